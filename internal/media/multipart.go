package media

import (
	"bytes"
	"io"
	"net/http"
)

// ReadMultipartFile reads the whole multipart file sent in field, limited to maxBytes.
func ReadMultipartFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyUpload
	}
	return buf.Bytes(), nil
}
