package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// PrepareImage decodes data, applies EXIF orientation and shrinks it to at
// most maxWidth pixels wide. Images already narrow enough are returned as-is.
func PrepareImage(data []byte, contentType string, maxWidth int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %v", err)
	}

	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return data, contentType, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if contentType == "image/png" {
		err = imaging.Encode(&buf, resized, imaging.PNG)
	} else {
		contentType = "image/jpeg"
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), contentType, nil
}
