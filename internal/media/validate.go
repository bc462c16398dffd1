package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyFile       = errors.New("file has no valid content")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("only image/jpeg and image/png are allowed")
)

var allowedTypes = []string{"image/jpeg", "image/png"}

// ValidateImage checks size and sniffed content type. It returns the
// detected MIME type on success.
func ValidateImage(data []byte, maxBytes int64) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, fmt.Errorf("%w, got %s", ErrUnsupportedType, mtype.String())
	}
	return mtype, nil
}

// NewFile validates raw bytes and wraps them as a File.
func NewFile(name string, data []byte, maxBytes int64) (File, error) {
	mtype, err := ValidateImage(data, maxBytes)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        name,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Data:        data,
	}, nil
}

// Upload is a raw file received from a client, not yet validated.
type Upload struct {
	Name string
	Data []byte
}

// Validate runs ValidateImage over the upload.
func (u Upload) Validate(maxBytes int64) (File, error) {
	return NewFile(u.Name, u.Data, maxBytes)
}

// ReadUpload reads a multipart file. Oversized uploads are refused from
// the header before the body is read. Content type is not checked here.
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) (Upload, error) {
	if fh == nil || fh.Size == 0 {
		return Upload{}, ErrEmptyFile
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return Upload{}, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	limit := fh.Size
	if maxBytes > 0 {
		limit = maxBytes + 1
	}
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}

	return Upload{Name: fh.Filename, Data: data}, nil
}

// IsValidationError reports whether err was produced by image validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedType)
}
