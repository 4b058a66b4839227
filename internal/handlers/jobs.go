package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/lehigh-university-libraries/yolosplit/internal/pipeline"
)

func (h *Handler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.jobStore.List())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleJobDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	jobID, sub, _ := strings.Cut(rest, "/")

	job, ok := h.getJobOrError(w, jobID)
	if !ok {
		return
	}

	if sub == "archive" {
		if r.Method != "GET" {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if job.ArchivePath == "" {
			h.writeError(w, "Job has no archive", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+pipeline.ArchiveName+`"`)
		http.ServeFile(w, r, job.ArchivePath)
		return
	}
	if sub != "" {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, job)
	case "DELETE":
		h.jobStore.Delete(jobID)
		removeJobFiles(job)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// SweepExpired removes jobs, and their files, created more than the configured
// TTL before now. It returns how many were removed.
func (h *Handler) SweepExpired(now time.Time) int {
	if h.cfg.JobTTL <= 0 {
		return 0
	}
	expired := h.jobStore.RemoveCreatedBefore(now.Add(-h.cfg.JobTTL))
	for _, job := range expired {
		removeJobFiles(job)
	}
	if len(expired) > 0 {
		slog.Info("Expired jobs removed", "count", len(expired), "ttl", h.cfg.JobTTL)
	}
	return len(expired)
}

func removeJobFiles(job *models.Job) {
	if job.OutputDir == "" {
		return
	}
	runDir := filepath.Dir(job.OutputDir)
	if err := os.RemoveAll(runDir); err != nil {
		slog.Error("Failed to remove job files", "job_id", job.ID, "path", runDir, "err", err)
	}
}
