// Package storage persists uploaded study materials and hands back the
// public URL clients stream them from.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"bizportal/internal/domain"
)

// ObjectStore is the write side of content storage. Implementations return
// the public URL of the stored object.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Classify sniffs the payload and maps it onto a study-content type. Only
// video formats and PDF are accepted.
func Classify(data []byte) (domain.ContentType, string, error) {
	mt := mimetype.Detect(data)
	mime := mt.String()
	switch {
	case strings.HasPrefix(mime, "video/"):
		return domain.ContentVideo, mime, nil
	case mime == "application/pdf":
		return domain.ContentPDF, mime, nil
	}
	return "", mime, fmt.Errorf("%w: unsupported file type %s, only PDF and video files are allowed", domain.ErrValidation, mime)
}
