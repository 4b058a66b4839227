package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/lehigh-university-libraries/yolosplit/internal/pipeline"
)

func (h *Handler) HandleSplit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// A JSON body points at a directory on the server
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handlePathSplit(w, r)
		return
	}

	h.handleFileSplit(w, r)
}

func (h *Handler) handlePathSplit(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Path  string   `json:"path"`
		Train *float64 `json:"train"`
		Val   *float64 `json:"val"`
		Test  *float64 `json:"test"`
		Seed  *int64   `json:"seed"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	in := pipeline.Input{
		DirPath: request.Path,
		Ratios:  h.cfg.Ratios,
		Seed:    h.cfg.Seed,
	}
	if request.Train != nil {
		in.Ratios.Train = *request.Train
	}
	if request.Val != nil {
		in.Ratios.Val = *request.Val
	}
	if request.Test != nil {
		in.Ratios.Test = *request.Test
	}
	if request.Seed != nil {
		in.Seed = *request.Seed
	}

	h.runJob(w, in, request.Path)
}

func (h *Handler) handleFileSplit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadMB*1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.cfg.MaxUploadMB), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ratios, seed, err := h.formSettings(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmp, err := os.CreateTemp(h.cfg.WorkDir, "upload-*.zip")
	if err != nil {
		h.writeError(w, "Failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := tmp.Close(); err != nil {
		h.writeError(w, "Failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.runJob(w, pipeline.Input{
		ArchivePath: tmp.Name(),
		Ratios:      ratios,
		Seed:        seed,
	}, header.Filename)
}

// formSettings reads train/val/test/seed form values, falling back to the configured defaults
func (h *Handler) formSettings(r *http.Request) (models.SplitRatios, int64, error) {
	ratios := h.cfg.Ratios
	seed := h.cfg.Seed

	fields := []struct {
		name string
		dst  *float64
	}{
		{"train", &ratios.Train},
		{"val", &ratios.Val},
		{"test", &ratios.Test},
	}
	for _, f := range fields {
		v := strings.TrimSpace(r.FormValue(f.name))
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ratios, seed, fmt.Errorf("invalid %s ratio: %q", f.name, v)
		}
		*f.dst = parsed
	}

	if v := strings.TrimSpace(r.FormValue("seed")); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return ratios, seed, fmt.Errorf("invalid seed: %q", v)
		}
		seed = parsed
	}

	return ratios, seed, nil
}
