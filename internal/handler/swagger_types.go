package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ProcessDocumentForm documents the multipart form accepted by POST /documents.
type ProcessDocumentForm struct {
	Keywords string `json:"keywords" example:"total, invoice"`
}

// RecomputeAbstractRequest represents the recompute abstract request body.
type RecomputeAbstractRequest struct {
	Keywords []string `json:"keywords" example:"total,due date"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// SourceURLResponse carries a presigned download URL for an archived source.
type SourceURLResponse struct {
	DownloadURL string `json:"download_url" example:"https://s3.amazonaws.com/docintel-sources/...?X-Amz-Signature=..."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
