package domain

// FileType represents the allowed input document types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// EngineKind identifies which OCR path produced a fragment.
type EngineKind string

const (
	EngineFast     EngineKind = "fast"
	EngineAccurate EngineKind = "accurate"
)

// BlockKind tags the variant held by a Block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockKeyValue  BlockKind = "key_value"
)

// ContactKind tags the variant held by a Contact.
type ContactKind string

const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
	ContactURL   ContactKind = "url"
)

// DocumentKind is a coarse hint about what a page looks like.
type DocumentKind string

const (
	DocumentKindCertificate DocumentKind = "certificate"
	DocumentKindForm        DocumentKind = "form"
	DocumentKindGeneric     DocumentKind = "generic"
)

// ProcessingStatus summarizes how a document run ended.
type ProcessingStatus string

const (
	StatusCompleted ProcessingStatus = "completed"
	StatusPartial   ProcessingStatus = "partial"
	StatusFailed    ProcessingStatus = "failed"
)
