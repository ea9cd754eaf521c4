package domain

import "errors"

var (
	ErrInvalidImage        = errors.New("invalid image")
	ErrOCRUnavailable      = errors.New("ocr unavailable")
	ErrEngineTimeout       = errors.New("ocr engine timed out")
	ErrNoPagesSucceeded    = errors.New("no page of the document could be processed")
	ErrEmptyDocument       = errors.New("document has no pages")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrSourceNotArchived   = errors.New("source file was not archived")
	ErrObjectNotFound      = errors.New("stored object not found")
)
