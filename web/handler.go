package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/lifeprompt/assistant"
	"github.com/tbxark/lifeprompt/submit"
)

const (
	InvalidInputMessage = "Invalid user input"
	ServerErrorMessage  = "Internal Server Error"

	maxFormMemory = 1 << 20
)

//go:embed templates/index.html
var indexTemplate string

//go:embed static
var staticFiles embed.FS

var indexPage = template.Must(template.New("index").Parse(indexTemplate))

type pageData struct {
	Title          string
	Endpoint       string
	FormID         string
	RenderAreaID   string
	SubmitButtonID string
	UserInputField string
}

type Handler struct {
	responder assistant.Responder
	title     string
	mux       *http.ServeMux
}

func NewHandler(responder assistant.Responder, title string) *Handler {
	if title == "" {
		title = "Conway's Game of Words"
	}
	h := &Handler{responder: responder, title: title, mux: http.NewServeMux()}
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST "+submit.DefaultEndpoint, h.handleResults)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexPage.Execute(w, pageData{
		Title:          h.title,
		Endpoint:       submit.DefaultEndpoint,
		FormID:         submit.FormID,
		RenderAreaID:   submit.RenderAreaID,
		SubmitButtonID: submit.SubmitButtonID,
		UserInputField: submit.UserInputField,
	})
	if err != nil {
		slog.Error("Failed to render index", "error", err)
	}
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid form body"})
		return
	}
	values, ok := r.PostForm[submit.UserInputField]
	if !ok || len(values) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": submit.UserInputField + " is required"})
		return
	}
	input := values[0]
	if input == "" {
		writeJSON(w, http.StatusOK, submit.ServerResponse{ServerResponse: InvalidInputMessage})
		return
	}

	start := time.Now()
	answer, err := h.responder.Respond(r.Context(), input)
	if err != nil {
		slog.Error("Failed to answer prompt", "error", err, "model_error", errors.Is(err, assistant.ErrModel))
		writeJSON(w, http.StatusInternalServerError, submit.ServerResponse{ServerResponse: ServerErrorMessage})
		return
	}
	slog.Info("Answered prompt", "input_length", len(input), "duration", time.Since(start))
	writeJSON(w, http.StatusCreated, submit.ServerResponse{ServerResponse: answer})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, ServerErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
