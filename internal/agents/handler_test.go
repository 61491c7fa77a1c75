package agents_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/pkg/logging"
	"github.com/JaimeStill/agent-registry/pkg/routes"
)

func newServer(t *testing.T, seed []agents.Agent) *httptest.Server {
	t.Helper()

	sys, _ := newRegistry(t, seed)
	h := agents.NewHandler(sys, logging.Discard(), 1<<20)

	r := routes.New()
	r.RegisterGroup(h.Routes())

	srv := httptest.NewServer(r.Build())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHandler_CRUD(t *testing.T) {
	srv := newServer(t, nil)
	base := srv.URL + "/api/agents"

	resp := do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	if list := decodeBody[[]agents.Agent](t, resp); len(list) != 0 {
		t.Fatalf("GET = %v, want empty array", list)
	}

	resp = do(t, http.MethodPost, base, `{"id": 42, "name": "CodeCraft", "capabilities": ["Debugging"], "isEnabled": true}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[agents.Agent](t, resp)
	if created.ID != 1 {
		t.Errorf("POST id = %d, want 1 (client id ignored)", created.ID)
	}

	item := base + "/" + strconv.Itoa(created.ID)

	resp = do(t, http.MethodPut, item, `{"id": 1, "description": "debugs code"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", resp.StatusCode)
	}
	updated := decodeBody[agents.Agent](t, resp)
	if updated.Name != "CodeCraft" || updated.Description != "debugs code" {
		t.Errorf("PUT = %+v, want merged record", updated)
	}

	resp = do(t, http.MethodGet, item, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET item status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, http.MethodDelete, item, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200", resp.StatusCode)
	}
	msg := decodeBody[map[string]string](t, resp)
	if msg["message"] != "Agent deleted successfully" {
		t.Errorf("DELETE body = %v", msg)
	}

	resp = do(t, http.MethodDelete, item, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
	if body := decodeBody[map[string]string](t, resp); !strings.Contains(body["error"], "not found") {
		t.Errorf("second DELETE body = %v, want error message", body)
	}
}

func TestHandler_Errors(t *testing.T) {
	srv := newServer(t, []agents.Agent{{ID: 1, Name: "TextGenius", Capabilities: []string{"Blog Writing"}}})
	base := srv.URL + "/api/agents"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"find bad id", http.MethodGet, "/abc", "", http.StatusBadRequest},
		{"find zero id", http.MethodGet, "/0", "", http.StatusBadRequest},
		{"find missing", http.MethodGet, "/99", "", http.StatusNotFound},
		{"create malformed", http.MethodPost, "", `{"name":`, http.StatusBadRequest},
		{"create invalid", http.MethodPost, "", `{"name": "x", "capabilities": []}`, http.StatusBadRequest},
		{"create bad url", http.MethodPost, "", `{"name": "x", "capabilities": ["a"], "apiEndpoint": "nope"}`, http.StatusBadRequest},
		{"update bad id", http.MethodPut, "/x", `{}`, http.StatusBadRequest},
		{"update mismatch", http.MethodPut, "/1", `{"id": 2}`, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/99", `{"name": "y"}`, http.StatusNotFound},
		{"update malformed", http.MethodPut, "/1", `[`, http.StatusBadRequest},
		{"delete bad id", http.MethodDelete, "/-1", "", http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/99", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, base+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestHandler_ServerErrorHidesDetail(t *testing.T) {
	sys, err := agents.New(agents.NewStore(newStorage(t), ""), agents.Config{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h := agents.NewHandler(sys, logging.Discard(), 1<<20)

	r := routes.New()
	r.RegisterGroup(h.Routes())

	w := httptest.NewRecorder()
	r.Build().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agents", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	raw := w.Body.String()
	if strings.Contains(raw, "agents.json") {
		t.Errorf("body leaks storage detail: %s", raw)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("error = %q, want the bare status text", body["error"])
	}
}

func TestHandler_List_ETag(t *testing.T) {
	srv := newServer(t, []agents.Agent{{ID: 1, Name: "TextGenius", Capabilities: []string{"Blog Writing"}}})
	base := srv.URL + "/api/agents"

	resp := do(t, http.MethodGet, base, "")
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("GET returned no ETag")
	}

	req, _ := http.NewRequest(http.MethodGet, base, nil)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	cached.Body.Close()
	if cached.StatusCode != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", cached.StatusCode)
	}

	do(t, http.MethodPost, base, `{"name": "CodeCraft", "capabilities": ["Debugging"]}`)

	resp = do(t, http.MethodGet, base, "")
	if resp.Header.Get("ETag") == etag {
		t.Error("ETag unchanged after create")
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	sys, _ := newRegistry(t, nil)
	h := agents.NewHandler(sys, logging.Discard(), 16)

	r := routes.New()
	r.RegisterGroup(h.Routes())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(`{"name": "a very long agent name", "capabilities": ["x"]}`))
	r.Build().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}
