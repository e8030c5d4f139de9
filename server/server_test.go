package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ByLCY/barlabel/config"
	"github.com/ByLCY/barlabel/labels"
	canvasrenderer "github.com/ByLCY/barlabel/renderer/canvas"
)

func newTestServer(t *testing.T, mode string) http.Handler {
	t.Helper()
	svc, err := labels.NewService(labels.Options{Render: canvasrenderer.Options{ShowCaption: true}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	cfg := config.Default()
	cfg.Mode = mode
	if mode == config.ModeDev {
		cfg.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	return New(cfg, svc)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) DomainError {
	t.Helper()
	var body errDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return *body.Error
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t, config.ModeRelease), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestListPresets(t *testing.T) {
	rec := do(t, newTestServer(t, config.ModeRelease), http.MethodGet, "/api/v1/presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body PresetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Default != "2x1-2col" || len(body.Presets) == 0 {
		t.Fatalf("unexpected presets %+v", body)
	}
}

func TestRenderAndLatest(t *testing.T) {
	h := newTestServer(t, config.ModeRelease)

	if rec := do(t, h, http.MethodGet, "/api/v1/labels/latest", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("latest before render = %d", rec.Code)
	}

	body := `{
  "entries": [{"code": "A-1", "caption": "first"}],
  "range": {"prefix": "B-", "start": "1", "end": "03"},
  "csv": "C-1,from csv\n",
  "geometry": {"kind": "preset", "presetId": "2x1-2col"},
  "viewportPx": 300
}`
	rec := do(t, h, http.MethodPost, "/api/v1/labels/render", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status %d: %s", rec.Code, rec.Body.String())
	}
	var res RenderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	var codes []string
	for _, l := range res.Labels {
		codes = append(codes, l.Code)
		if !strings.HasPrefix(l.DataURL, "data:image/png;base64,") {
			t.Fatalf("label %s has no PNG data URL", l.Code)
		}
	}
	if got := strings.Join(codes, " "); got != "A-1 B-01 B-02 B-03 C-1" {
		t.Fatalf("codes = %s", got)
	}
	if len(res.Pages) != 3 || len(res.Pages[2].Labels) != 1 || res.Pages[2].Labels[0] != 4 {
		t.Fatalf("unexpected pages %+v", res.Pages)
	}
	if !(res.Preview.Scale > 0 && res.Preview.Scale < 1) {
		t.Fatalf("preview scale %g", res.Preview.Scale)
	}
	if !strings.Contains(res.PrintCSS, "size: 100mm 25mm;") {
		t.Fatalf("print css %q", res.PrintCSS)
	}

	latest := do(t, h, http.MethodGet, "/api/v1/labels/latest", "")
	if latest.Code != http.StatusOK {
		t.Fatalf("latest status %d", latest.Code)
	}
	var again RenderResponse
	if err := json.Unmarshal(latest.Body.Bytes(), &again); err != nil {
		t.Fatal(err)
	}
	if again.BatchID != res.BatchID {
		t.Fatalf("latest batch %s, want %s", again.BatchID, res.BatchID)
	}
}

func TestRenderPDF(t *testing.T) {
	h := newTestServer(t, config.ModeRelease)
	rec := do(t, h, http.MethodPost, "/api/v1/labels/pdf", `{"entries":[{"code":"P-1"}],"geometry":{"kind":"custom","width":"4in","height":"1in","columns":"2"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestRenderErrors(t *testing.T) {
	h := newTestServer(t, config.ModeRelease)
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"bad width", `{"entries":[{"code":"A"}],"geometry":{"kind":"custom","width":"abc","height":"10"}}`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"unknown preset", `{"entries":[{"code":"A"}],"geometry":{"kind":"preset","presetId":"nope"}}`, http.StatusNotFound, ErrCodeNotFound},
		{"bad range", `{"range":{"start":"9","end":"1"}}`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"empty code", `{"entries":[{"code":" "}]}`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"unknown symbology", `{"entries":[{"code":"A"}],"options":{"symbology":"qr"}}`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"huge raster", `{"entries":[{"code":"A1"}],"geometry":{"kind":"custom","width":"1e300","height":"10","columns":"1"}}`, http.StatusBadRequest, ErrCodeInvalidArgument},
		{"range at int bound", `{"range":{"start":"-9223372036854775808","end":"9223372036854775807"}}`, http.StatusBadRequest, ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/labels/render", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			if de := decodeError(t, rec); de.Code != tc.code || de.Message == "" {
				t.Fatalf("error %+v, want code %s", de, tc.code)
			}
		})
	}
}

func TestConcurrentRendersAllComplete(t *testing.T) {
	h := newTestServer(t, config.ModeRelease)
	body := `{"range":{"prefix":"R-","start":"1","end":"60"},"geometry":{"kind":"preset","presetId":"2x1-2col"}}`

	const clients = 4
	codes := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/labels/render", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("client %d got status %d, statuses %v", i, code, codes)
		}
	}
}

func TestEmptyBatchPDFIsBadRequest(t *testing.T) {
	h := newTestServer(t, config.ModeRelease)
	rec := do(t, h, http.MethodPost, "/api/v1/labels/pdf", `{"entries":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSOnlyInDev(t *testing.T) {
	for mode, want := range map[string]string{
		config.ModeDev:     "http://localhost:3000",
		config.ModeRelease: "",
	} {
		h := newTestServer(t, mode)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Fatalf("%s: allow origin %q, want %q", mode, got, want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(t, config.ModeRelease), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != ErrCodeNotFound {
		t.Fatalf("unknown route = %d %s", rec.Code, rec.Body.String())
	}
}
