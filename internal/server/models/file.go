package models

import "time"

// Category is the semantic bucket a file is filed under, derived from its
// MIME type.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryDocuments Category = "documents"
	CategoryText      Category = "text"
	CategoryOther     Category = "other"
)

// StoredFile is the metadata row kept for every file written to disk.
type StoredFile struct {
	// ID is the opaque identifier clients use for deletion.
	ID string
	// AppID and AppName identify the owning tenant.
	AppID   string
	AppName string

	// OriginalName is the client-supplied filename.
	OriginalName string
	// StoredName is the server-generated name on disk.
	StoredName string

	Category Category
	MimeType string
	// SizeBytes counts the bytes actually written, not the declared size.
	SizeBytes int64
	// RelativePath is always AppName/Category/StoredName.
	RelativePath string

	UploadedAt time.Time
	IsDeleted  bool
}
