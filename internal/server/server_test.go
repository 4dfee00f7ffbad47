package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ibtopo/pkg/buildinfo"
	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

const dump = `Switch: 0x0002c90200412345 leaf1:
           3    1[  ] ==( 4X      10.0 Gbps Active/  LinkUp)==>       5    1[  ] "node01 HCA-1" ( )
           3   19[  ] ==( 4X      10.0 Gbps Active/  LinkUp)==>       4    1[  ] "leaf2" ( )
Switch: 0x0002c90200412346 leaf2:
           4    1[  ] ==( 4X      10.0 Gbps Active/  LinkUp)==>       3   19[  ] "leaf1" ( )
           4    2[  ] ==( 4X      10.0 Gbps Active/  LinkUp)==>       7    1[  ] "node07 HCA-1" ( )
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(nil, nil, logger), pipeline.Options{}, logger)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Build.Version != buildinfo.Version {
		t.Errorf("health = %+v", body)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request ID %q is not a UUID", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid uuid kept", "6f1c1a8e-2f0b-4a34-9a57-3f1f4b7f7a11", true},
		{"garbage replaced", "not-a-uuid", false},
		{"missing generated", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep && got != tt.header {
				t.Errorf("request ID = %q, want %q", got, tt.header)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("request ID %q is not a UUID", got)
			}
		})
	}
}

func TestRender(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/v1/render?format=dot&lid=4", dump)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != pipeline.ContentTypes["dot"] {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get("X-Fabric-Links"); got != "2" {
		t.Errorf("X-Fabric-Links = %q, want 2", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "graph fabric {") || !strings.Contains(body, "node07") || strings.Contains(body, "node01") {
		t.Errorf("unexpected DOT:\n%s", body)
	}
}

func TestRender_EmptyInputWarns(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/v1/render?format=dot", "nothing here\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Warning") == "" {
		t.Error("empty topology should set a Warning header")
	}
}

func TestTopology(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/v1/topology?interconnect=true", dump)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var doc struct {
		Nodes []struct {
			LID int `json:"lid"`
		} `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Links) != 1 {
		t.Errorf("interconnect model = %d nodes %d links, want 2/1", len(doc.Nodes), len(doc.Links))
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		code   errors.Code
	}{
		{"bad format", "format=gif", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad lid", "lid=abc", http.StatusBadRequest, errors.ErrCodeInvalidFilter},
		{"lid out of range", "lid=0", http.StatusBadRequest, errors.ErrCodeInvalidFilter},
		{"exclusive filters", "interconnect=1&hosts=1", http.StatusBadRequest, errors.ErrCodeInvalidFilter},
		{"bad bool", "labels=maybe", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad layout", "format=dot&layout=spiral", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/render?"+tt.query, dump)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestRender_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.maxBody = 64

	rec := do(t, s, http.MethodPost, "/api/v1/render?format=dot", dump)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/v1/render", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidTemplate, http.StatusBadRequest},
		{errors.ErrCodeFileNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeRenderFailed, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
