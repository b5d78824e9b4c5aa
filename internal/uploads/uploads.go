package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxUploadSize = 10 << 20

var ErrUnsupportedType = errors.New("only image uploads are allowed")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store persists uploaded files and returns the URL they are served from.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// DetectImage sniffs the first bytes of an upload and returns its content
// type. Anything that is not an image is rejected.
func DetectImage(head []byte) (string, error) {
	ct := http.DetectContentType(head)
	if _, ok := imageExtensions[ct]; !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// NewKey returns a unique object key under prefix. The extension follows
// the content type and falls back to the one in filename.
func NewKey(prefix, filename, contentType string) string {
	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(filepath.Base(filename)))
	}

	key := uuid.NewString() + ext
	if prefix != "" {
		key = strings.Trim(prefix, "/") + "/" + key
	}
	return key
}
