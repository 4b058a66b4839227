package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/yolosplit/internal/config"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/lehigh-university-libraries/yolosplit/internal/pipeline"
	"github.com/lehigh-university-libraries/yolosplit/internal/splitter"
	"github.com/lehigh-university-libraries/yolosplit/internal/storage"
)

type Handler struct {
	jobStore  *storage.JobStore
	cfg       config.Config
	unmatched splitter.UnmatchedPolicy
}

func New(cfg config.Config) (*Handler, error) {
	policy, err := splitter.ParseUnmatchedPolicy(cfg.Unmatched)
	if err != nil {
		return nil, err
	}
	return &Handler{
		jobStore:  storage.New(),
		cfg:       cfg,
		unmatched: policy,
	}, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getJobOrError(w http.ResponseWriter, jobID string) (*models.Job, bool) {
	job, exists := h.jobStore.Get(jobID)
	if !exists {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return nil, false
	}
	return job, true
}

// runJob executes one split, records it and writes the job as the response
func (h *Handler) runJob(w http.ResponseWriter, in pipeline.Input, source string) {
	in.WorkDir = h.cfg.WorkDir
	in.Unmatched = h.unmatched

	res := pipeline.Run(in)

	job := &models.Job{
		ID:          uuid.NewString(),
		Source:      source,
		Ratios:      in.Ratios,
		Seed:        in.Seed,
		Status:      res.Status,
		OK:          res.OK(),
		OutputDir:   res.OutputDir,
		ArchivePath: res.ArchivePath,
		CreatedAt:   time.Now(),
	}
	if job.OK {
		job.ArchiveURL = "/api/jobs/" + job.ID + "/archive"
	}
	h.jobStore.Set(job.ID, job)

	slog.Info("Split job recorded", "job_id", job.ID, "source", source, "ok", job.OK)
	h.writeJSONStatus(w, statusCode(res.Err), job)
}

func statusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrIO):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
