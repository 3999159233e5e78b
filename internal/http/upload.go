package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

const defaultUploadField = "file"

// FileUpload is a multipart file body.
type FileUpload struct {
	// FieldName defaults to "file".
	FieldName string
	// Filename is the name reported to the service.
	Filename string
	Content  io.Reader
}

func (f *FileUpload) encode() ([]byte, string, error) {
	field := f.FieldName
	if field == "" {
		field = defaultUploadField
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filepath.Base(f.Filename))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if f.Content != nil {
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// Upload posts content as a multipart file named filename.
func (c *Client) Upload(ctx context.Context, path, filename string, content io.Reader) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		File:   &FileUpload{Filename: filename, Content: content},
	})
}
