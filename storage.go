package imageedit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists generated images. Implementations can wrap cloud
// storage clients (GCS, S3, etc.); DirStorage writes to a local directory.
type Storage interface {
	// SaveFile saves data under path and returns where it can be read back.
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	// URL is where the image can be accessed
	URL string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveImage decodes img and saves it as {basePath}.{extension}.
func SaveImage(ctx context.Context, storage Storage, img DataURL, basePath string) (*StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}

	data, err := img.Bytes()
	if err != nil {
		return nil, err
	}

	path := basePath + "." + extensionFromMIME(img.MIMEType)
	url, err := storage.SaveFile(ctx, data, path, img.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", path, err)
	}

	return &StorageResult{
		URL:  url,
		Path: path,
		Size: len(data),
	}, nil
}

// DirStorage writes images below Root.
type DirStorage struct {
	Root string
}

// SaveFile writes data to Root/path, creating directories as needed.
func (d DirStorage) SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(d.Root, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(full), nil
}

// GetMIMEType guesses an image MIME type from a file name.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jpg", ".jpeg":
		return MIMETypeJPEG
	default:
		return MIMETypePNG
	}
}

// LoadImageFile reads an image file into a DataURL.
func LoadImageFile(filePath string) (DataURL, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return DataURL{}, err
	}
	return NewDataURL(data, GetMIMEType(filePath)), nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case MIMETypeJPEG:
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
