package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_DefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.False(t, w.Written())
	assert.Zero(t, w.BytesWritten())
}

func TestWrite_ImplicitHeaderAndCount(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	_, _ = w.Write([]byte("hello "))
	_, _ = w.Write([]byte("world"))

	assert.True(t, w.Written())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 11, w.BytesWritten())
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestWriteHeader_FirstWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusBadGateway)
	w.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusBadGateway, w.StatusCode())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWrap_ReusesExistingWrapper(t *testing.T) {
	rec := httptest.NewRecorder()
	outer := Wrap(rec)

	assert.Same(t, outer, Wrap(outer))
	assert.Same(t, rec, outer.Unwrap())
}

func TestFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.Flush()

	assert.True(t, rec.Flushed)
	assert.True(t, w.Written())
}
