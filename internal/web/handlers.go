package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"go.uber.org/zap"

	"github.com/KaramelBytes/kpilens/internal/ai"
	"github.com/KaramelBytes/kpilens/internal/analysis"
	"github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/grid"
)

const maxAskBody = 8 << 20

type pageData struct {
	Title string
}

// renderEntry serves the single page.
func (s *Server) renderEntry(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, pageData{Title: s.opts.PageTitle}); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleDataset(name dataset.Name) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := s.fetcher.Fetch(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ds)
	}
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	all, err := s.fetcher.FetchAll(r.Context(), dataset.Names...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	name, err := dataset.ParseName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	ds, err := s.fetcher.Fetch(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Run(string(name), ds, s.opts.ScanColumns, s.opts.ScanPolicy))
}

type askRequest struct {
	Question    string          `json:"question"`
	DataContext json.RawMessage `json:"dataContext"`
}

type askResponse struct {
	Answer string `json:"answer"`
	HTML   string `json:"html"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAskBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, badRequest(fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, badRequest(errors.New("question is required")))
		return
	}
	answer, err := s.asker.Ask(r.Context(), req.Question, contextText(req.DataContext))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, HTML: RenderMarkdown(answer)})
}

// contextText passes a JSON string through as its content and any other
// JSON value as its raw text.
func contextText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// RenderMarkdown converts an answer to HTML. Raw HTML in the answer is dropped.
func RenderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(md), p, r))
}

type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

// statusFor picks the HTTP status by error kind; the message is never rewritten.
func statusFor(err error) int {
	var (
		reqErr   *requestError
		missing  *config.MissingError
		notFound *grid.NotFoundError
		upstream *ai.UpstreamError
		empty    *ai.EmptyResponseError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &upstream), errors.As(err, &empty):
		return http.StatusBadGateway
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
