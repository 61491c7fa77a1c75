package agents_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-registry/internal/agents"
)

func TestValidate(t *testing.T) {
	valid := func() agents.Agent {
		return agents.Agent{
			ID:           1,
			Name:         "TextGenius",
			Capabilities: []string{"Blog Writing", "SEO Content"},
			APIEndpoint:  "https://api.example.com/textgenius",
			ImageURL:     "https://via.placeholder.com/150?text=TextGenius",
		}
	}

	tests := []struct {
		name     string
		mutate   func(a *agents.Agent)
		wantPath string
	}{
		{"valid", func(a *agents.Agent) {}, ""},
		{"optional urls omitted", func(a *agents.Agent) { a.APIEndpoint, a.ImageURL = "", "" }, ""},
		{"empty name", func(a *agents.Agent) { a.Name = "" }, "/name"},
		{"blank name", func(a *agents.Agent) { a.Name = "   " }, "/name"},
		{"no capabilities", func(a *agents.Agent) { a.Capabilities = []string{} }, "/capabilities"},
		{"nil capabilities", func(a *agents.Agent) { a.Capabilities = nil }, "/capabilities"},
		{"duplicate capabilities", func(a *agents.Agent) { a.Capabilities = []string{"x", "x"} }, "/capabilities"},
		{"blank capability", func(a *agents.Agent) { a.Capabilities = []string{"x", " "} }, "/capabilities/1"},
		{"relative endpoint", func(a *agents.Agent) { a.APIEndpoint = "not a url" }, "/apiEndpoint"},
		{"zero id", func(a *agents.Agent) { a.ID = 0 }, "/id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(&a)

			err := agents.Validate(a)
			if tt.wantPath == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, agents.ErrInvalidAgent) {
				t.Fatalf("Validate() error = %v, want ErrInvalidAgent", err)
			}

			var ve *agents.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}

			found := false
			for _, issue := range ve.Issues {
				if issue.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("issues = %v, want one at %s", ve.Issues, tt.wantPath)
			}
			if !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("Error() = %q, want it to mention %s", err.Error(), tt.wantPath)
			}
		})
	}
}
