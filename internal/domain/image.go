package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIMEType is assumed when the payload carries no data-URL header
const DefaultImageMIMEType = "image/png"

// Image is a decoded inline image ready to be forwarded to the vision API
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data URL
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// ParseImageDataURL decodes "data:<mime>;base64,<payload>" (or a bare base64 payload)
func ParseImageDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	mimeType := DefaultImageMIMEType
	payload := s

	if strings.HasPrefix(s, "data:") {
		header, data, found := strings.Cut(s, ",")
		if !found {
			return Image{}, fmt.Errorf("%w: missing data URL payload", ErrInvalidImage)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return Image{}, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidImage)
		}
		if mt := strings.TrimSuffix(meta, ";base64"); mt != "" {
			mimeType = mt
		}
		payload = data
	}

	if payload == "" {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some canvases emit unpadded payloads
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	return Image{MIMEType: mimeType, Data: data}, nil
}
