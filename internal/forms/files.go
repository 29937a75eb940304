package forms

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vantix/vantix/internal/photo"
	"github.com/vantix/vantix/internal/vantixapi"
)

// MaxUpload bounds every uploaded file.
const MaxUpload = 10 << 20

// FileSlot is one file input. Data is what gets sent; Preview is a data URL
// shown next to the input.
type FileSlot struct {
	Name        string
	ContentType string
	Data        []byte `validate:"required"`
	Preview     string
}

// NewPhotoSlot accepts only images and builds a local preview.
func NewPhotoSlot(name string, data []byte) (*FileSlot, error) {
	contentType, err := photo.DetectType(data)
	if err != nil {
		return nil, err
	}
	preview, err := photo.Preview(data)
	if err != nil {
		return nil, err
	}
	return &FileSlot{Name: name, ContentType: contentType, Data: data, Preview: preview}, nil
}

// ReadFormFile loads field from a parsed multipart form. A missing file is (nil, nil).
func ReadFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, nil
		}
		return "", nil, err
	}
	defer file.Close()
	return readUpload(file, header)
}

func readUpload(file multipart.File, header *multipart.FileHeader) (string, []byte, error) {
	if header.Size > MaxUpload {
		return "", nil, fmt.Errorf("%s supera el tamaño máximo", header.Filename)
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxUpload+1))
	if err != nil {
		return "", nil, err
	}
	if len(data) > MaxUpload {
		return "", nil, fmt.Errorf("%s supera el tamaño máximo", header.Filename)
	}
	return header.Filename, data, nil
}

// ReadPhoto reads an optional photo field into a slot.
func ReadPhoto(r *http.Request, field string) (*FileSlot, error) {
	name, data, err := ReadFormFile(r, field)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return NewPhotoSlot(name, data)
}

func (f *FileSlot) part() *vantixapi.FilePart {
	if f == nil || len(f.Data) == 0 {
		return nil
	}
	return &vantixapi.FilePart{Filename: f.Name, ContentType: f.ContentType, Data: f.Data}
}
