package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/job"
	"github.com/video-stream/subreflow/internal/logging"
	"github.com/video-stream/subreflow/internal/storage"
	"github.com/video-stream/subreflow/internal/subtitle/reflow"
	"github.com/video-stream/subreflow/internal/subtitle/translate"
)

type ReflowHandler struct {
	svc       *translate.Service
	queue     *job.JobQueue
	mediaPath string
	log       *zap.Logger
}

func NewReflowHandler(svc *translate.Service, queue *job.JobQueue, mediaPath string, logger *zap.Logger) *ReflowHandler {
	return &ReflowHandler{svc: svc, queue: queue, mediaPath: mediaPath, log: logging.OrNop(logger).Named("reflow")}
}

type reflowRequest struct {
	Content string `json:"content"`
	job.ReflowParams
}

type reflowResponse struct {
	Content          string `json:"content"`
	Sentences        int    `json:"sentences"`
	Cues             int    `json:"cues"`
	Dropped          int    `json:"dropped"`
	SkippedTimelines int    `json:"skipped_timelines"`
}

// reflowStatus maps engine and pipeline errors to HTTP status codes.
func reflowStatus(err error) int {
	var malformed *reflow.MalformedTimelineError
	var translation *reflow.TranslationError
	switch {
	case errors.Is(err, translate.ErrNotConfigured), errors.Is(err, translate.ErrUnknownEngine):
		return http.StatusBadRequest
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &translation):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Reflow translates and reflows an SRT document posted in the body and
// returns the result synchronously.
func (h *ReflowHandler) Reflow(w http.ResponseWriter, r *http.Request) {
	var req reflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		jsonError(w, "content is required", http.StatusBadRequest)
		return
	}

	lines, err := storage.SplitLines(strings.NewReader(req.Content))
	if err != nil {
		jsonError(w, "failed to read content", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Reflow(r.Context(), lines, req.ReflowParams, nil)
	if err != nil {
		h.log.Warn("reflow failed", zap.Error(err))
		jsonError(w, err.Error(), reflowStatus(err))
		return
	}

	w.Header().Set("X-Reflow-Sentences", strconv.Itoa(res.Blocks))
	w.Header().Set("X-Reflow-Cues", strconv.Itoa(res.Cues))
	jsonResponse(w, reflowResponse{
		Content:          strings.Join(res.Lines, "\n"),
		Sentences:        res.Blocks,
		Cues:             res.Cues,
		Dropped:          res.Dropped,
		SkippedTimelines: res.SkippedTimelines,
	}, http.StatusOK)
}

// ReflowFile queues a reflow job for a subtitle file in the media library.
func (h *ReflowHandler) ReflowFile(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	if path == "" || !storage.IsSubtitleFile(path) {
		jsonError(w, "a subtitle file path is required", http.StatusBadRequest)
		return
	}
	fullPath, err := storage.ResolvePath(h.mediaPath, path)
	if err != nil {
		jsonError(w, "path outside media root", http.StatusForbidden)
		return
	}
	if _, err := os.Stat(fullPath); err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	var params job.ReflowParams
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	params = h.svc.Resolve(params)
	if _, err := h.svc.Engine(params.Engine); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	j, err := h.queue.Enqueue(job.JobReflow, path, params)
	if err != nil {
		jsonError(w, "failed to create job: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

type translateRequest struct {
	Text string `json:"text"`
	job.ReflowParams
}

// Translate translates a single word or phrase.
func (h *ReflowHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	out, err := h.svc.TranslateText(r.Context(), req.Text, req.ReflowParams)
	if err != nil {
		status := reflowStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		jsonError(w, err.Error(), status)
		return
	}
	jsonResponse(w, map[string]string{"text": req.Text, "translation": out}, http.StatusOK)
}

// Engines lists the engines, whether each has credentials, and the presets.
func (h *ReflowHandler) Engines(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"engines": h.svc.Engines(),
		"presets": translate.PresetNames(),
	}, http.StatusOK)
}
