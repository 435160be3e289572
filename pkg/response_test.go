package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponseBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteResponseBytes(rr, ContentType.JSON, []byte(`{"key":"val"}`), http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"key":"val"}`, rr.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONOK(rr, map[string]int{"streak": 3})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"streak":3}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteJSON(rr, func() {}, http.StatusOK)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
