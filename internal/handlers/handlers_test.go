package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/lehigh-university-libraries/yolosplit/internal/archiver"
	"github.com/lehigh-university-libraries/yolosplit/internal/config"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *http.ServeMux) {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	cfg.MaxUploadMB = 1

	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/split", h.HandleSplit)
	mux.HandleFunc("/api/jobs", h.HandleJobs)
	mux.HandleFunc("/api/jobs/", h.HandleJobDetail)
	mux.HandleFunc("/api/ratio", h.HandleRatio)
	return h, mux
}

func makeDataset(t *testing.T, n int) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"images", "labels"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < n; i++ {
		stem := fmt.Sprintf("%04d", i)
		if err := os.WriteFile(filepath.Join(root, "images", stem+".jpg"), []byte(stem), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, "labels", stem+".txt"), []byte(stem), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func uploadRequest(t *testing.T, zipPath string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	part, err := mw.CreateFormFile("file", "dataset.zip")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/split", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndDownload(t *testing.T) {
	_, mux := newTestHandler(t)

	zipPath, err := archiver.Archive(makeDataset(t, 10), filepath.Join(t.TempDir(), "in.zip"))
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, zipPath, map[string]string{"train": "0.8", "val": "0.2", "test": "0", "seed": "7"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var job models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if !job.OK || job.Seed != 7 || job.Source != "dataset.zip" {
		t.Errorf("Unexpected job: %+v", job)
	}
	if !strings.Contains(job.Status, "train: 8 pairs") {
		t.Errorf("Unexpected status:\n%s", job.Status)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", job.ArchiveURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected archive download, got %d", rec.Code)
	}

	data, _ := io.ReadAll(rec.Body)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Downloaded file is not a zip: %v", err)
	}
	images := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "test/") {
			t.Errorf("Unexpected test split entry %s", f.Name)
		}
		if strings.Contains(f.Name, "/images/") && !f.FileInfo().IsDir() {
			images++
		}
	}
	if images != 10 {
		t.Errorf("Expected 10 images in archive, got %d", images)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs", nil))
	var jobs []models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil || len(jobs) != 1 {
		t.Errorf("Expected one listed job, got %d (%v)", len(jobs), err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/jobs/"+job.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", rec.Code)
	}
	if _, err := os.Stat(job.OutputDir); !os.IsNotExist(err) {
		t.Error("Expected job files removed after delete")
	}
}

func TestPathSplitErrors(t *testing.T) {
	_, mux := newTestHandler(t)
	dataset := makeDataset(t, 4)

	tests := []struct {
		name string
		body string
		code int
		text string
	}{
		{"bad ratios", fmt.Sprintf(`{"path":%q,"train":0.5,"val":0.5,"test":0.5}`, dataset), http.StatusBadRequest, "ratio error"},
		{"missing dir", `{"path":"/nonexistent/data"}`, http.StatusBadRequest, "input error"},
		{"empty dataset", fmt.Sprintf(`{"path":%q}`, makeDataset(t, 0)), http.StatusUnprocessableEntity, "empty dataset"},
		{"ok", fmt.Sprintf(`{"path":%q,"seed":1}`, dataset), http.StatusOK, "Total matched pairs: 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/split", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("Expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			var job models.Job
			if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if !strings.Contains(job.Status, tt.text) {
				t.Errorf("Expected %q in status, got %q", tt.text, job.Status)
			}
		})
	}
}

func TestUploadInvalidForm(t *testing.T) {
	_, mux := newTestHandler(t)

	zipPath, err := archiver.Archive(makeDataset(t, 2), filepath.Join(t.TempDir(), "in.zip"))
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, zipPath, map[string]string{"seed": "abc"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad seed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/split", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestHandleRatio(t *testing.T) {
	_, mux := newTestHandler(t)

	tests := []struct {
		query string
		code  int
		valid bool
	}{
		{"train=0.7&val=0.2&test=0.1", http.StatusOK, true},
		{"train=0.8&val=0.2", http.StatusOK, true},
		{"train=0.5&val=0.5&test=0.5", http.StatusOK, false},
		{"train=abc", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ratio?"+tt.query, nil))
			if rec.Code != tt.code {
				t.Fatalf("Expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var resp struct {
				Valid   bool   `json:"valid"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v (%s)", tt.valid, resp.Valid, resp.Message)
			}
		})
	}
}

func TestSweepExpired(t *testing.T) {
	h, mux := newTestHandler(t)

	body := fmt.Sprintf(`{"path":%q}`, makeDataset(t, 3))
	req := httptest.NewRequest("POST", "/api/split", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var job models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}

	if n := h.SweepExpired(time.Now().Add(time.Hour)); n != 0 {
		t.Errorf("Expected nothing expired within TTL, removed %d", n)
	}
	if n := h.SweepExpired(time.Now().Add(h.cfg.JobTTL + time.Hour)); n != 1 {
		t.Fatalf("Expected 1 expired job, removed %d", n)
	}
	if _, err := os.Stat(job.OutputDir); !os.IsNotExist(err) {
		t.Error("Expected expired job files removed")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs/"+job.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for expired job, got %d", rec.Code)
	}
}

func TestSweepDisabled(t *testing.T) {
	h, _ := newTestHandler(t)
	h.cfg.JobTTL = 0
	h.jobStore.Set("old", &models.Job{ID: "old", CreatedAt: time.Now().Add(-1000 * time.Hour)})

	if n := h.SweepExpired(time.Now()); n != 0 {
		t.Errorf("Expected no sweep with TTL 0, removed %d", n)
	}
}
