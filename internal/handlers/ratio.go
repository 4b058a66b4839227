package handlers

import (
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/yolosplit/internal/splitter"
)

// HandleRatio reports whether the train/val/test query values form a usable split
func (h *Handler) HandleRatio(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	values := make([]float64, 3)
	for i, name := range []string{"train", "val", "test"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(w, "Invalid "+name+" value: "+raw, http.StatusBadRequest)
			return
		}
		values[i] = v
	}

	valid, message := splitter.RatioStatus(values[0], values[1], values[2])
	h.writeJSON(w, map[string]any{
		"valid":   valid,
		"message": message,
	})
}
