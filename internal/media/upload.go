package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// AssetsPrefix is the public URL prefix media is served under.
const AssetsPrefix = "/assets/"

// ErrInvalidType is returned for uploads that are not a supported image.
var ErrInvalidType = errors.New("invalid file type")

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("file too large")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload describes a stored image and its thumbnail.
type Upload struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	ThumbKey string `json:"thumb_key"`
	ThumbURL string `json:"thumb_url"`
	Type     string `json:"content_type"`
	Size     int    `json:"size"`
}

// SaveUpload validates a multipart image upload, stores it with a random
// name and stores a listing-card thumbnail beside it.
func SaveUpload(ctx context.Context, store Storage, file *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return SaveImage(ctx, store, src, maxBytes)
}

// SaveImage is SaveUpload for any reader.
func SaveImage(ctx context.Context, store Storage, r io.Reader, maxBytes int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	// Magic bytes decide the type, never the client-supplied name
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (only images allowed)", ErrInvalidType, contentType)
	}

	thumb, err := Thumbnail(bytes.NewReader(data), ThumbnailWidth, ThumbnailHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidType, err)
	}

	name, err := randomName()
	if err != nil {
		return nil, err
	}

	up := &Upload{
		Key:      "uploads/" + name + ext,
		ThumbKey: "uploads/thumbs/" + name + ".jpg",
		Type:     contentType,
		Size:     len(data),
	}
	up.URL = AssetsPrefix + up.Key
	up.ThumbURL = AssetsPrefix + up.ThumbKey

	if err := store.Put(ctx, up.Key, data, contentType); err != nil {
		return nil, err
	}
	if err := store.Put(ctx, up.ThumbKey, thumb, "image/jpeg"); err != nil {
		_ = store.Delete(ctx, up.Key)
		return nil, err
	}
	return up, nil
}

func randomName() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random filename: %w", err)
	}
	return hex.EncodeToString(b), nil
}
