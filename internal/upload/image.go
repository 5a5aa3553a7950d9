// Package upload reads image files from multipart requests.
package upload

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
)

// MaxImageSize caps the bytes read from one image part.
const MaxImageSize = 5 << 20

// Image is a validated uploaded image.
type Image struct {
	Filename    string
	ContentType string
	Extension   string
	Data        []byte
}

// ReadImage scans a multipart stream for the part named field and checks it is a
// non-empty named image. Content type is sniffed from the bytes, not the header.
func ReadImage(r *multipart.Reader, field string) (*Image, error) {
	for {
		// EOF and malformed streams both mean no usable image part.
		part, err := r.NextPart()
		if err != nil {
			return nil, apierr.NoImage()
		}
		if part.FormName() != field {
			_ = part.Close()
			continue
		}
		defer part.Close()
		return readPart(part)
	}
}

func readPart(part *multipart.Part) (*Image, error) {
	if part.FileName() == "" {
		return nil, apierr.UnnamedMultipartFile()
	}

	data, err := io.ReadAll(io.LimitReader(part, MaxImageSize+1))
	if err != nil {
		return nil, apierr.Internal(goerr.Wrap(err, "read image part", goerr.V("filename", part.FileName())))
	}
	if len(data) == 0 {
		return nil, apierr.EmptyFile()
	}
	if len(data) > MaxImageSize {
		return nil, apierr.NotAnImage()
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, apierr.NotAnImage()
	}
	return &Image{
		Filename:    part.FileName(),
		ContentType: mime.String(),
		Extension:   mime.Extension(),
		Data:        data,
	}, nil
}
