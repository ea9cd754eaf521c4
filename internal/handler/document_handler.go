package handler

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docintel/internal/domain"
	"docintel/internal/export"
	"docintel/internal/service"
	"docintel/internal/summary"
)

// DocumentHandler handles document processing endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
	maxFileSize     int64
}

// NewDocumentHandler creates a new DocumentHandler. Uploads larger than
// maxFileSize bytes are rejected before they reach the pipeline.
func NewDocumentHandler(documentService service.DocumentService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, maxFileSize: maxFileSize}
}

// Process handles POST /api/v1/documents
// @Summary Process a document
// @Description Run OCR, structuring, contact extraction and keyword summarization on an uploaded PDF, JPG or PNG
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to process (PDF, JPG, or PNG)"
// @Param keywords formData string false "Comma-separated keywords for the abstract"
// @Success 201 {object} Response{data=domain.DocumentResult} "Document processed (status completed or partial)"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "No page could be processed"
// @Failure 504 {object} ErrorResponseBody "Processing timed out"
// @Router /documents [post]
func (h *DocumentHandler) Process(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
		return
	}

	res, err := h.documentService.Process(c.Request.Context(), service.ProcessInput{
		SourceName: header.Filename,
		Data:       buf.Bytes(),
		Keywords:   summary.ParseKeywords(c.PostForm("keywords")),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, res)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document result by ID
// @Description Get the full structured result of a processed document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.DocumentResult} "Document result"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	res, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List processed documents, newest first
// @Tags documents
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.DocumentRecord,meta=PagMeta} "List of documents"
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	recs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, recs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// RecomputeAbstract handles PUT /api/v1/documents/:id/abstract
// @Summary Recompute the abstract
// @Description Replace the document abstract with one computed for a new keyword set
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body RecomputeAbstractRequest true "Keywords"
// @Success 200 {object} Response{data=domain.DocumentResult} "Updated document result"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/abstract [put]
func (h *DocumentHandler) RecomputeAbstract(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	var req RecomputeAbstractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "keywords must be a list of strings")
		return
	}

	res, err := h.documentService.RecomputeAbstract(c.Request.Context(), docID, req.Keywords)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// ExportKeyValuesCSV handles GET /api/v1/documents/:id/export/csv
// @Summary Export key-value pairs as CSV
// @Tags documents
// @Produce text/csv
// @Param id path string true "Document ID (UUID)"
// @Success 200 {file} file "CSV file"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/export/csv [get]
func (h *DocumentHandler) ExportKeyValuesCSV(c *gin.Context) {
	res, ok := h.loadResult(c)
	if !ok {
		return
	}

	filename := export.BuildFilename(res.SourceName, "key_values", "csv", time.Now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteKeyValuesCSV(c.Writer, res); err != nil {
		log.Printf("documentHandler.ExportKeyValuesCSV: writing %s failed: %v", res.ID, err)
	}
}

// ExportTablesXLSX handles GET /api/v1/documents/:id/export/xlsx
// @Summary Export extracted tables as XLSX
// @Tags documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Document ID (UUID)"
// @Success 200 {file} file "XLSX workbook"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/export/xlsx [get]
func (h *DocumentHandler) ExportTablesXLSX(c *gin.Context) {
	res, ok := h.loadResult(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTablesXLSX(&buf, res); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(res.SourceName, "tables", "xlsx", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// SourceURL handles GET /api/v1/documents/:id/source
// @Summary Get source download URL
// @Description Get a presigned URL for the archived source file
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=SourceURLResponse} "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Document or source not found"
// @Router /documents/{id}/source [get]
func (h *DocumentHandler) SourceURL(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	url, err := h.documentService.SourceURL(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, SourceURLResponse{DownloadURL: url})
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "document deleted"})
}

func (h *DocumentHandler) loadResult(c *gin.Context) (*domain.DocumentResult, bool) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return nil, false
	}
	res, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return res, true
}

func parseDocumentID(c *gin.Context) (uuid.UUID, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
