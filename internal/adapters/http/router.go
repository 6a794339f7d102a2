package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
	"github.com/tallyhq/docwatch/internal/core/usecase"
)

// UploadRecorder appends upload events to the history the analyzer reads.
type UploadRecorder interface {
	RecordUpload(ctx context.Context, event domain.UploadEvent) error
}

// DeadlineLister reads back the synthetic calendar entries.
type DeadlineLister interface {
	ListUploadDeadlines(ctx context.Context) ([]domain.TaxDeadline, error)
}

type Router struct {
	pipeline  *usecase.AnalysisPipeline
	patterns  ports.PatternRepository
	missing   ports.MissingDocumentRepository
	settings  ports.ReminderSettingsRepository
	generator *usecase.GenerateRemindersUseCase
	uploads   UploadRecorder
	deadlines DeadlineLister
}

func NewRouter(
	pipeline *usecase.AnalysisPipeline,
	patterns ports.PatternRepository,
	missing ports.MissingDocumentRepository,
	settings ports.ReminderSettingsRepository,
	generator *usecase.GenerateRemindersUseCase,
	uploads UploadRecorder,
	deadlines DeadlineLister,
) *Router {
	return &Router{
		pipeline:  pipeline,
		patterns:  patterns,
		missing:   missing,
		settings:  settings,
		generator: generator,
		uploads:   uploads,
		deadlines: deadlines,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/analysis/run", rt.runAnalysis)
	mux.HandleFunc("/v1/patterns", rt.listPatterns)
	mux.HandleFunc("/v1/missing-documents", rt.listMissingDocuments)
	mux.HandleFunc("/v1/missing-documents/", rt.updateMissingStatus)
	mux.HandleFunc("/v1/reminders/generate", rt.generateReminders)
	mux.HandleFunc("/v1/reminder-settings/", rt.reminderSettings)
	mux.HandleFunc("/v1/uploads", rt.recordUpload)
	mux.HandleFunc("/v1/deadlines", rt.listDeadlines)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) runAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	run, err := rt.pipeline.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) listPatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	patterns, err := rt.patterns.LoadPatterns(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": patterns})
}

func (rt *Router) listMissingDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	includeResolved := r.URL.Query().Get("include_resolved") == "true"
	missing, err := rt.missing.ListMissingDocuments(r.Context(), includeResolved)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"missing_documents": missing})
}

func (rt *Router) updateMissingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/missing-documents/")
	id, action, found := strings.Cut(rest, "/")
	if !found || action != "status" || id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	status := domain.MissingDocumentStatus(req.Status)
	switch status {
	case domain.MissingStatusPending, domain.MissingStatusReminded,
		domain.MissingStatusUploaded, domain.MissingStatusDismissed:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status: " + req.Status})
		return
	}

	if err := rt.missing.UpdateMissingDocumentStatus(r.Context(), id, status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

func (rt *Router) generateReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	respectSettings := true
	if r.Body != nil && r.ContentLength != 0 {
		var req struct {
			RespectSettings *bool `json:"respect_settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if req.RespectSettings != nil {
			respectSettings = *req.RespectSettings
		}
	}

	open, err := rt.missing.ListMissingDocuments(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := rt.generator.GenerateReminders(r.Context(), open, ports.GenerateOptions{RespectSettings: respectSettings})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) reminderSettings(w http.ResponseWriter, r *http.Request) {
	docType := domain.DocumentType(strings.TrimPrefix(r.URL.Path, "/v1/reminder-settings/"))
	if docType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document type is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := rt.settings.LoadSettings(r.Context(), docType)
		if err != nil {
			if domain.IsKind(err, domain.ErrSettingsNotFound) {
				defaults := domain.DefaultReminderSettings(docType)
				writeJSON(w, http.StatusOK, defaults)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPatch:
		var patch domain.ReminderSettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		updated, err := rt.settings.UpdateSettings(r.Context(), docType, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) recordUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentType string `json:"document_type"`
		Source       string `json:"source"`
		UploadDate   string `json:"upload_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.DocumentType == "" || strings.TrimSpace(req.Source) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_type and source are required"})
		return
	}
	uploadDate, err := parseDate(req.UploadDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload_date must be YYYY-MM-DD or RFC 3339"})
		return
	}

	event := domain.UploadEvent{
		DocumentType: domain.DocumentType(req.DocumentType),
		Source:       strings.TrimSpace(req.Source),
		UploadDate:   uploadDate,
	}
	if err := rt.uploads.RecordUpload(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (rt *Router) listDeadlines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	deadlines, err := rt.deadlines.ListUploadDeadlines(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deadlines": deadlines})
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
