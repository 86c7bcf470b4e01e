package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

type TaskExporter interface {
	ExportTasks(tasks []domain.Task) ([]byte, error)
}

type QueryObserver interface {
	RecordQueryObservation(service string, sourceCount, backfilled int, duration time.Duration)
}

type Options struct {
	Service          string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	ingestUC ports.DocumentIngestor
	askUC    ports.KnowledgeQueryService
	kbUC     ports.KnowledgeAdminService
	taskUC   ports.TaskService
	docs     ports.DocumentReader
	exporter TaskExporter
	observer QueryObserver
	opts     Options
}

func NewRouter(
	ingestUC ports.DocumentIngestor,
	askUC ports.KnowledgeQueryService,
	kbUC ports.KnowledgeAdminService,
	taskUC ports.TaskService,
	docs ports.DocumentReader,
	exporter TaskExporter,
	observer QueryObserver,
	opts Options,
) *Router {
	if opts.Service == "" {
		opts.Service = "api"
	}
	return &Router{
		ingestUC: ingestUC,
		askUC:    askUC,
		kbUC:     kbUC,
		taskUC:   taskUC,
		docs:     docs,
		exporter: exporter,
		observer: observer,
		opts:     opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/kb/query", rt.queryKB)
	mux.HandleFunc("/v1/kb/chunks", rt.kbChunks)
	mux.HandleFunc("/v1/tasks", rt.tasks)
	mux.HandleFunc("/v1/tasks/export", rt.exportTasks)
	mux.HandleFunc("/v1/tasks/", rt.taskByID)

	var handler http.Handler = mux
	if rt.opts.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.BackpressureWait)
	}
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) queryKB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
		Model    string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.askUC.Ask(r.Context(), req.Question, req.TopK, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.observer != nil {
		backfilled := 0
		for _, s := range answer.Sources {
			if s.Score == 0 {
				backfilled++
			}
		}
		rt.observer.RecordQueryObservation(rt.opts.Service, len(answer.Sources), backfilled, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) kbChunks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := parsePositiveInt(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}
		rows, err := rt.kbUC.Preview(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"chunks": rows, "count": len(rows)})
	case http.MethodDelete:
		if err := rt.kbUC.Clear(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := rt.taskUC.ListTasks(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
	case http.MethodPost:
		var req struct {
			Title    string `json:"title"`
			Notes    string `json:"notes"`
			Priority string `json:"priority"`
			DueAt    string `json:"due_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}

		var dueAt *time.Time
		if req.DueAt != "" {
			parsed, err := time.Parse("2006-01-02", req.DueAt)
			if err != nil {
				parsed, err = time.Parse(time.RFC3339, req.DueAt)
			}
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_at must be YYYY-MM-DD or RFC3339"})
				return
			}
			dueAt = &parsed
		}

		task, err := rt.taskUC.AddTask(r.Context(), req.Title, req.Notes, dueAt, domain.TaskPriority(req.Priority))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) taskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}

	if id, ok := strings.CutSuffix(rest, "/done"); ok {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := rt.taskUC.CompleteTask(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
		return
	}

	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.taskUC.DeleteTask(r.Context(), rest); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) exportTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	tasks, err := rt.taskUC.ListTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := rt.exporter.ExportTasks(tasks)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parsePositiveInt(raw string) (int, error) {
	var n int
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, errInvalidNumber
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errInvalidNumber
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
