package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mrraes/bewijs/internal/export"
	"github.com/mrraes/bewijs/internal/model"
	"github.com/mrraes/bewijs/internal/summary"
)

type memPrefs map[string]string

func (m memPrefs) GetPref(_ context.Context, key string) (string, error) { return m[key], nil }

func newTestServer(t *testing.T, prefs summary.PrefReader) (*httptest.Server, *export.Finisher, string) {
	t.Helper()
	dir := t.TempDir()
	now := time.Date(2026, 10, 16, 14, 5, 0, 0, time.UTC)
	f := &export.Finisher{
		Normalizer: &summary.Normalizer{Identity: summary.Standard(prefs, "")},
		Downloader: export.DirDownloader{Dir: dir},
		Location:   time.UTC,
		Now:        func() time.Time { return now },
	}
	r := chi.NewRouter()
	New(f, prefs).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, f, dir
}

func post(t *testing.T, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const sessionJSON = `{"name":"Sam","class":"3B","mode":"toets","score":1,"total":2,
	"questions":[{"q":"1+1","correct":"2","given":"2","ok":true},{"q":"2+2","correct":"4","given":"5","ok":false}]}`

func attachmentName(t *testing.T, resp *http.Response) string {
	t.Helper()
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parse content-disposition %q: %v", resp.Header.Get("Content-Disposition"), err)
	}
	return params["filename"]
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestFinish(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/finish", sessionJSON, map[string]string{"X-Game-Id": "breuken"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}
	if got, want := attachmentName(t, resp), "breuken — Sam — 20261016-1405.png"; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1200 || b.Dy() != 780 {
		t.Errorf("image = %v", b)
	}
}

func TestFinishGameIDFromReferer(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/finish", `{"name":"Sam"}`, map[string]string{
		"Referer":      "https://school.example/spellen/tafels.html",
		"X-Page-Title": "Tafels oefenen",
	})
	if got := attachmentName(t, resp); !strings.HasPrefix(got, "tafels — Sam") {
		t.Errorf("filename = %q, want game id from referer", got)
	}
}

func TestFinishRejectsNonObject(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	for _, body := range []string{`[1,2]`, `"x"`, `{`} {
		resp := post(t, srv.URL+"/api/finish", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestFinishEmptyBody(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/finish", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := attachmentName(t, resp); got != "Spel — anoniem — 20261016-1405.png" {
		t.Errorf("filename = %q", got)
	}
}

func TestFinishAsync(t *testing.T) {
	srv, f, dir := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/finish/async", sessionJSON, map[string]string{"X-Game-Id": "breuken"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body["launched"] {
		t.Errorf("body = %v", body)
	}
	f.Wait()
	if _, err := os.Stat(filepath.Join(dir, "breuken — Sam — 20261016-1405.png")); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestTable(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	body := `{"meta":{"name":"Sam","gameId":"tafels"},"table":{"columns":["Som","Antwoord"],"rows":[["3x4",12],["5x5",null]]},"filename":"tafels.png"}`
	resp := post(t, srv.URL+"/api/table", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := attachmentName(t, resp); got != "tafels.png" {
		t.Errorf("filename = %q", got)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dy() != 760 {
		t.Errorf("image = %v", b)
	}
}

func TestPreview(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/preview?width=300", sessionJSON, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 {
		t.Errorf("preview width = %d", b.Dx())
	}

	resp = post(t, srv.URL+"/api/preview?width=abc", sessionJSON, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad width status = %d", resp.StatusCode)
	}
}

func TestNormalize(t *testing.T) {
	srv, _, _ := newTestServer(t, memPrefs{model.PrefKeyClass: "2A"})
	resp := post(t, srv.URL+"/api/normalize", `{"playerName":"Lou","mode":"Oefen","seconds":"61.6","questions":["los"]}`,
		map[string]string{"X-Page-Title": "Breuken"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var s map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	tests := map[string]any{
		"name":    "Lou",
		"class":   "2A",
		"gameId":  "Breuken",
		"mode":    "vrij",
		"seconds": 62.0,
		"total":   1.0,
	}
	for k, want := range tests {
		if s[k] != want {
			t.Errorf("%s = %v, want %v", k, s[k], want)
		}
	}
	if q, _ := s["questions"].([]any); len(q) != 1 || q[0] != "los" {
		t.Errorf("questions = %v", s["questions"])
	}
}

func TestPrefill(t *testing.T) {
	tests := []struct {
		name  string
		prefs summary.PrefReader
		want  map[string]string
	}{
		{"none", nil, map[string]string{"name": "", "class": ""}},
		{"stored", memPrefs{model.PrefKeyName: "Sam", model.PrefKeyClass: "3B"}, map[string]string{"name": "Sam", "class": "3B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t, tt.prefs)
			resp, err := http.Get(srv.URL + "/api/prefill")
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			var got map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got["name"] != tt.want["name"] || got["class"] != tt.want["class"] {
				t.Errorf("prefill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := (attachment{rec}).Download(context.Background(), "a — b.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatal(err)
	}
	if params["filename"] != "a — b.png" {
		t.Errorf("filename = %q", params["filename"])
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("x")) {
		t.Errorf("body = %q", rec.Body.Bytes())
	}
}

func TestTooLarge(t *testing.T) {
	srv, f, _ := newTestServer(t, nil)
	f.MaxPixels = 1000
	table := `{"table":{"columns":["A"],"rows":[["1"]]}}`
	for _, tc := range []struct{ path, body string }{
		{"/api/finish", sessionJSON},
		{"/api/preview", sessionJSON},
		{"/api/table", table},
	} {
		resp := post(t, srv.URL+tc.path, tc.body, nil)
		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("%s status = %d, want 413", tc.path, resp.StatusCode)
		}
	}

	resp := post(t, srv.URL+"/api/finish/async", sessionJSON, nil)
	var out map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	f.Wait()
	if out["launched"] {
		t.Error("oversized async finish reported a launch")
	}
}

func TestTableOptions(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	body := `{"options":{"name":"Sam","gameId":"tafels","ok":3,"err":1},"table":{"columns":["Som"],"rows":[["3x4"]]}}`
	resp := post(t, srv.URL+"/api/table", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got, want := attachmentName(t, resp), "tafels — Sam — 20261016-1405.png"; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
}
