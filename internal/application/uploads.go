package application

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectUploader stores a blob and returns the URL it is served from.
// *helpers.GCSUploader satisfies it.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// objectPath names an upload <prefix>/<ownerID>/<uuid><ext>.
func objectPath(prefix, ownerID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, ownerID, uuid.NewString()+ext)
}

func upload(ctx context.Context, up ObjectUploader, prefix, ownerID string, r io.Reader, filename, contentType string) (string, error) {
	if up == nil {
		return "", ErrStorageNotConfigured
	}
	url, err := up.Upload(ctx, objectPath(prefix, ownerID, filename), contentType, r)
	if err != nil {
		return "", storageFailure(err)
	}
	return url, nil
}
