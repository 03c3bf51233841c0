package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("open docs/components/nope.html: no such file")
	err := NewDocMissingError("Could not read from the specified generated documentation file.", cause).
		WithPath("docs/components/nope.html")

	assert.Equal(t,
		"[ERR_DOC_MISSING] path:docs/components/nope.html Could not read from the specified generated documentation file.: open docs/components/nope.html: no such file",
		err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppErrorIs(t *testing.T) {
	a := NewNotFoundError(ErrCodeViewNotFound, "view a missing", nil)
	b := NewNotFoundError(ErrCodeViewNotFound, "view b missing", nil)
	c := NewIOError(ErrCodeListingFailed, "listing failed", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NewNotFoundError(ErrCodeViewNotFound, "x", nil), http.StatusNotFound},
		{"doc missing", NewDocMissingError("x", nil), http.StatusInternalServerError},
		{"validation", NewValidationError(ErrCodeInvalidViewName, "x"), http.StatusBadRequest},
		{"wrapped fs miss", fmt.Errorf("read: %w", fs.ErrNotExist), http.StatusNotFound},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError(ErrCodeViewNotFound, "x", nil)))
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", fs.ErrNotExist)))
	assert.False(t, IsNotFound(NewIOError(ErrCodeListingFailed, "x", fs.ErrPermission)))
}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errors = append(r.errors, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandlerLevels(t *testing.T) {
	logger := &recordingLogger{}
	h := NewErrorHandler(logger)

	h.Handle(context.Background(), nil)
	h.Handle(context.Background(), NewNotFoundError(ErrCodeViewNotFound, "x", nil))
	h.Handle(context.Background(), NewDocMissingError("x", nil))
	h.Handle(context.Background(), errors.New("plain"))

	assert.Len(t, logger.warns, 1)
	assert.Len(t, logger.errors, 2)
}
