// Package category maps MIME types to the fixed set of file categories and
// derives file extensions used for stored names.
package category

import (
	"strings"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/server/models"
)

var mimeCategories = map[string]models.Category{
	"image/jpeg":    models.CategoryImages,
	"image/png":     models.CategoryImages,
	"image/gif":     models.CategoryImages,
	"image/webp":    models.CategoryImages,
	"image/svg+xml": models.CategoryImages,
	"image/bmp":     models.CategoryImages,
	"image/tiff":    models.CategoryImages,

	"application/pdf":    models.CategoryDocuments,
	"application/msword": models.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   models.CategoryDocuments,
	"application/vnd.ms-excel":                                                  models.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         models.CategoryDocuments,
	"application/vnd.ms-powerpoint":                                             models.CategoryDocuments,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.CategoryDocuments,

	"text/plain":       models.CategoryText,
	"text/csv":         models.CategoryText,
	"text/html":        models.CategoryText,
	"text/markdown":    models.CategoryText,
	"application/json": models.CategoryText,
	"application/xml":  models.CategoryText,
	"text/xml":         models.CategoryText,
}

// Resolve returns the category for an exact MIME type string. Parameters,
// case variants and unknown types all resolve to CategoryOther.
func Resolve(mimeType string) models.Category {
	if c, ok := mimeCategories[mimeType]; ok {
		return c
	}
	return models.CategoryOther
}

// Extension returns the lower-cased text after the last '.' in filename, or
// common.DefaultExtension when there is none.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return common.DefaultExtension
	}
	return strings.ToLower(filename[i+1:])
}
