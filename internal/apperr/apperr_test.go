package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindInvalidSession, http.StatusUnauthorized},
		{KindAlreadyAuthenticated, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUpdateFailed, http.StatusInternalServerError},
		{KindSigning, http.StatusInternalServerError},
		{KindTokenIssue, http.StatusInternalServerError},
		{KindRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, New(tc.kind, "x").Status(), string(tc.kind))
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := Wrap(KindDeleteFailed, "unable to delete user", errors.New("socket closed"))
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, KindDeleteFailed, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindDeleteFailed))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Contains(t, base.Error(), "socket closed")
}
