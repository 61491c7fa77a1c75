package agents_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/agent-registry/internal/agents"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", agents.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("%w: 7", agents.ErrNotFound), http.StatusNotFound},
		{"invalid", agents.ErrInvalidAgent, http.StatusBadRequest},
		{"validation error", &agents.ValidationError{Issues: []agents.Issue{{Path: "/name", Message: "x"}}}, http.StatusBadRequest},
		{"id mismatch", agents.ErrIDMismatch, http.StatusBadRequest},
		{"conflict", agents.ErrConflict, http.StatusConflict},
		{"busy", agents.ErrBusy, http.StatusServiceUnavailable},
		{"storage", agents.ErrStorageUnavailable, http.StatusInternalServerError},
		{"corrupt", agents.ErrCorruptData, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agents.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
