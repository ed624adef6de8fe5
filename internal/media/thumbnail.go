package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// Listing card thumbnails match the carousel card ratio
	ThumbnailWidth  = 640
	ThumbnailHeight = 400
)

// Thumbnail decodes an image and returns a center-cropped JPEG of exactly
// width x height.
func Thumbnail(r io.Reader, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	srcBounds := img.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	srcAspect := float64(srcWidth) / float64(srcHeight)
	dstAspect := float64(width) / float64(height)

	var cropRect image.Rectangle
	if srcAspect > dstAspect {
		// Wider than target, crop the sides
		newWidth := int(float64(srcHeight) * dstAspect)
		x := srcBounds.Min.X + (srcWidth-newWidth)/2
		cropRect = image.Rect(x, srcBounds.Min.Y, x+newWidth, srcBounds.Max.Y)
	} else {
		newHeight := int(float64(srcWidth) / dstAspect)
		y := srcBounds.Min.Y + (srcHeight-newHeight)/2
		cropRect = image.Rect(srcBounds.Min.X, y, srcBounds.Max.X, y+newHeight)
	}

	thumb := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), img, cropRect, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
