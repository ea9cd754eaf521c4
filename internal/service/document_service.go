package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docintel/internal/assemble"
	"docintel/internal/contact"
	"docintel/internal/domain"
	"docintel/internal/loader"
	"docintel/internal/ocr"
	"docintel/internal/port"
	"docintel/internal/structure"
	"docintel/internal/summary"
)

// PageExtractor runs OCR with fallback on one page image.
type PageExtractor interface {
	Extract(ctx context.Context, pageIndex int, img image.Image) (*ocr.PageExtraction, error)
}

// ProcessInput is the DTO for processing one uploaded document.
type ProcessInput struct {
	SourceName string
	Data       []byte
	Keywords   []string
}

// ProcessingConfig holds pipeline settings.
type ProcessingConfig struct {
	Workers      int
	MaxFileSize  int64
	MaxSentences int
	LineOverlap  float64
	Timeout      time.Duration
	Bucket       string
	// PresignExpiry is the lifetime of source download URLs, in seconds.
	PresignExpiry int64
}

// DocumentService defines the document processing contract.
type DocumentService interface {
	Process(ctx context.Context, input ProcessInput) (*domain.DocumentResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DocumentResult, error)
	List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error)
	RecomputeAbstract(ctx context.Context, id uuid.UUID, keywords []string) (*domain.DocumentResult, error)
	SourceURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	loader     port.PageLoader
	extractor  PageExtractor
	structurer *structure.Engine
	summarizer *summary.Summarizer
	tables     port.TableExtractor
	storage    port.ObjectStorage
	docRepo    port.DocumentRepository
	cfg        ProcessingConfig
}

// NewDocumentService creates a new DocumentService implementation. storage
// and docRepo may be nil, in which case sources are not archived and results
// are not persisted.
func NewDocumentService(
	pageLoader port.PageLoader,
	extractor PageExtractor,
	structurer *structure.Engine,
	summarizer *summary.Summarizer,
	tables port.TableExtractor,
	storage port.ObjectStorage,
	docRepo port.DocumentRepository,
	cfg ProcessingConfig,
) DocumentService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &documentService{
		loader:     pageLoader,
		extractor:  extractor,
		structurer: structurer,
		summarizer: summarizer,
		tables:     tables,
		storage:    storage,
		docRepo:    docRepo,
		cfg:        cfg,
	}
}

func (s *documentService) Process(ctx context.Context, input ProcessInput) (*domain.DocumentResult, error) {
	if s.cfg.MaxFileSize > 0 && int64(len(input.Data)) > s.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	fileType, err := loader.DetectFileType(input.Data)
	if err != nil {
		return nil, err
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	id := uuid.New()
	log.Printf("documentService.Process: document %s (%s, %s, %d bytes)", id, input.SourceName, fileType, len(input.Data))

	var warnings []string
	s3Key := ""
	if s.storage != nil && s.cfg.Bucket != "" {
		s3Key = fmt.Sprintf("documents/%s/%s", id, input.SourceName)
		_, upErr := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         s3Key,
			Body:        bytes.NewReader(input.Data),
			ContentType: domain.AllowedFileTypes[fileType],
			Size:        int64(len(input.Data)),
			Metadata:    map[string]string{"source-name": url.QueryEscape(input.SourceName)},
		})
		if upErr != nil {
			log.Printf("documentService.Process: archiving source of %s failed: %v", id, upErr)
			warnings = append(warnings, fmt.Sprintf("%v: %v", domain.ErrUploadFailed, upErr))
			s3Key = ""
		}
	}

	pages, err := s.loader.Load(ctx, input.Data, fileType)
	if err != nil {
		s.discardSource(ctx, id, s3Key)
		return nil, fmt.Errorf("loading document: %w", err)
	}

	var tables []domain.Table
	var tableErr error
	tablesDone := make(chan struct{})
	go func() {
		defer close(tablesDone)
		if fileType != domain.FileTypePDF || s.tables == nil {
			return
		}
		tables, tableErr = s.tables.ExtractTables(ctx, input.Data)
	}()

	outcomes, err := s.processPages(ctx, pages)
	<-tablesDone
	if err != nil {
		log.Printf("documentService.Process: document %s canceled, discarding partial results: %v", id, err)
		s.discardSource(ctx, id, s3Key)
		return nil, err
	}
	if tableErr != nil {
		log.Printf("documentService.Process: table extraction for %s failed: %v", id, tableErr)
		warnings = append(warnings, fmt.Sprintf("table extraction failed: %v", tableErr))
		tables = nil
	}
	for _, o := range outcomes {
		if o.contactErr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", o.PageIndex, o.contactErr))
		}
	}

	pageOutcomes := make([]assemble.PageOutcome, len(outcomes))
	var paragraphs []domain.Block
	for i, o := range outcomes {
		pageOutcomes[i] = o.PageOutcome
		if o.Err == nil {
			paragraphs = append(paragraphs, o.Blocks...)
		}
	}
	abstract := s.summarizer.Summarize(paragraphs, input.Keywords, s.cfg.MaxSentences)

	now := time.Now().UTC()
	res, err := assemble.Assemble(assemble.Input{
		ID:         id,
		SourceName: input.SourceName,
		Pages:      pageOutcomes,
		Tables:     tables,
		Abstract:   abstract,
		Warnings:   warnings,
		CreatedAt:  now,
	})
	if err != nil {
		log.Printf("documentService.Process: document %s failed: %v", id, err)
		s.discardSource(ctx, id, s3Key)
		return nil, err
	}

	if s.docRepo != nil {
		rec, err := newRecord(res, fileType, s.cfg.Bucket, s3Key, abstract.Keywords)
		if err != nil {
			s.discardSource(ctx, id, s3Key)
			return nil, err
		}
		if err := s.docRepo.Create(ctx, rec); err != nil {
			s.discardSource(ctx, id, s3Key)
			return nil, fmt.Errorf("persisting result: %w", err)
		}
	}

	log.Printf("documentService.Process: document %s %s (%d pages, %d page errors, %d warnings)",
		id, res.Status, res.PageCount, len(res.PageErrors), len(res.Warnings))
	return res, nil
}

// discardSource removes an archived source that no record will point to.
// It runs detached from ctx so a canceled document still cleans up.
func (s *documentService) discardSource(ctx context.Context, id uuid.UUID, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), s.cfg.Bucket, key); err != nil {
		log.Printf("documentService.discardSource: removing source of %s failed: %v", id, err)
	}
}

type pageOutcome struct {
	assemble.PageOutcome
	contactErr error
}

// processPages runs every page through OCR and structuring on a bounded
// worker pool. Page failures are recorded on the outcome. The only error
// returned is cancellation, checked before each page starts.
func (s *documentService) processPages(ctx context.Context, pages []port.Page) ([]pageOutcome, error) {
	outcomes := make([]pageOutcome, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i := range pages {
		page := pages[i]
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.processPage(gctx, page)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *documentService) processPage(ctx context.Context, page port.Page) (pageOutcome, error) {
	out := pageOutcome{PageOutcome: assemble.PageOutcome{PageIndex: page.Index}}
	if page.Err != nil {
		out.Err = page.Err
		return out, nil
	}

	ext, err := s.extractor.Extract(ctx, page.Index, page.Image)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		log.Printf("documentService.processPage: page %d failed: %v", page.Index, err)
		out.Err = err
		return out, nil
	}

	blocks := s.structurer.Structure(ext.Fragments)
	raw := structure.RawText(ext.Fragments, s.cfg.LineOverlap)
	out.EngineUsed = ext.EngineUsed
	out.Quality = ext.Quality
	out.Blocks = blocks
	out.RawText = raw
	out.Columns = structure.Columns(ext.Fragments, s.cfg.LineOverlap, blocks)
	out.Kind = structure.DetectKind(raw)
	out.Contacts, out.contactErr = extractContacts(blocks)
	return out, nil
}

// extractContacts degrades a failing extraction to no contacts.
func extractContacts(blocks []domain.Block) (contacts []domain.Contact, err error) {
	defer func() {
		if r := recover(); r != nil {
			contacts, err = nil, fmt.Errorf("contact extraction failed: %v", r)
		}
	}()
	return contact.Extract(blocks), nil
}

func newRecord(res *domain.DocumentResult, fileType domain.FileType, bucket, key string, keywords []string) (*domain.DocumentRecord, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	if key == "" {
		bucket = ""
	}
	return &domain.DocumentRecord{
		ID:         res.ID,
		SourceName: res.SourceName,
		FileType:   fileType,
		S3Bucket:   bucket,
		S3Key:      key,
		Status:     res.Status,
		PageCount:  res.PageCount,
		Keywords:   strings.Join(keywords, ","),
		Result:     payload,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.CreatedAt,
	}, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.DocumentResult, error) {
	if s.docRepo == nil {
		return nil, domain.ErrDocumentNotFound
	}
	rec, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var res domain.DocumentResult
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return nil, fmt.Errorf("decoding stored result: %w", err)
	}
	return &res, nil
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	if s.docRepo == nil {
		return []domain.DocumentRecord{}, 0, nil
	}
	return s.docRepo.List(ctx, offset, limit)
}

// RecomputeAbstract rebuilds the abstract of a stored document for a new
// keyword set. The previous abstract is discarded entirely.
func (s *documentService) RecomputeAbstract(ctx context.Context, id uuid.UUID, keywords []string) (*domain.DocumentResult, error) {
	if s.docRepo == nil {
		return nil, domain.ErrDocumentNotFound
	}
	rec, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var stored domain.DocumentResult
	if err := json.Unmarshal(rec.Result, &stored); err != nil {
		return nil, fmt.Errorf("decoding stored result: %w", err)
	}

	abstract := s.summarizer.Summarize(stored.ParagraphBlocks(), keywords, s.cfg.MaxSentences)
	updated := stored
	updated.Abstract = append([]domain.ScoredSentence{}, abstract.Sentences...)
	updated.Summary = domain.Summary{Keywords: append([]string{}, abstract.Keywords...), Text: summary.Text(abstract)}

	payload, err := json.Marshal(&updated)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	rec.Keywords = strings.Join(abstract.Keywords, ",")
	rec.Result = payload
	if err := s.docRepo.UpdateResult(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting abstract: %w", err)
	}
	log.Printf("documentService.RecomputeAbstract: document %s, %d keywords, %d sentences", id, len(abstract.Keywords), len(abstract.Sentences))
	return &updated, nil
}

// SourceURL returns a presigned download URL for the archived source file.
func (s *documentService) SourceURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.docRepo == nil {
		return "", domain.ErrDocumentNotFound
	}
	rec, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if s.storage == nil || rec.S3Key == "" {
		return "", domain.ErrSourceNotArchived
	}
	signed, err := s.storage.GetPresignedURL(ctx, rec.S3Bucket, rec.S3Key, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning source: %w", err)
	}
	return signed, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.docRepo == nil {
		return domain.ErrDocumentNotFound
	}
	rec, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.storage != nil && rec.S3Key != "" {
		if err := s.storage.Delete(ctx, rec.S3Bucket, rec.S3Key); err != nil {
			log.Printf("documentService.Delete: removing source %s/%s failed: %v", rec.S3Bucket, rec.S3Key, err)
		}
	}
	return s.docRepo.Delete(ctx, id)
}
