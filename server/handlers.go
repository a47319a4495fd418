package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/mockup"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/report"
	"github.com/bububa/uxcrew/stories"
)

const (
	contentTypeHTML     = "text/html; charset=utf-8"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// sandboxPolicy isolates model generated pages from the dashboard origin
	sandboxPolicy = "sandbox allow-scripts"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := indexView{
		Status:         s.status,
		Stages:         s.pipeline.Stages(),
		Runs:           summaries(s.registry.List()),
		Error:          msg,
		MaxUploadBytes: s.maxUploadBytes,
	}
	s.render(w, r, status, "index.html", data)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.renderIndex(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("The upload is larger than %d MB.", s.maxUploadBytes>>20))
			return
		}
		s.renderIndex(w, r, http.StatusBadRequest, "The upload could not be read.")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Choose a PNG or JPEG image to analyze.")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "The upload could not be read.")
		return
	}
	img, err := components.LoadImage(data, s.maxImageDimension)
	if err != nil {
		if errors.Is(err, components.ErrUnsupportedImage) {
			s.renderIndex(w, r, http.StatusUnsupportedMediaType, "Only PNG and JPEG images are supported.")
			return
		}
		s.renderIndex(w, r, http.StatusBadRequest, "The image could not be decoded.")
		return
	}
	req := &pipeline.Request{
		Image: img,
		Goals: SplitGoals(r.FormValue("goals")),
		Notes: strings.TrimSpace(r.FormValue("notes")),
	}
	entry, err := s.registry.Start(func() *pipeline.Run {
		return s.pipeline.Start(s.runCtx, req)
	})
	if err != nil {
		s.renderIndex(w, r, http.StatusServiceUnavailable, "Too many analyses are in progress, try again in a minute.")
		return
	}
	s.logger.InfoContext(r.Context(), "run started", "run_id", entry.Run.ID(), "format", img.Format, "width", img.Width, "height", img.Height, "goals", len(req.Goals))
	http.Redirect(w, r, "/runs/"+entry.Run.ID(), http.StatusSeeOther)
}

// SplitGoals splits the goals field on new lines and commas
func SplitGoals(v string) []string {
	var ret []string
	for _, goal := range strings.FieldsFunc(v, func(r rune) bool { return r == '\n' || r == ',' }) {
		if goal = strings.TrimSpace(goal); goal != "" {
			ret = append(ret, goal)
		}
	}
	return ret
}

func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	e, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
	}
	return e, ok
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	result := e.Run.Result()
	list, err := e.Stories(r.Context(), s.extractor)
	if err != nil {
		s.logger.WarnContext(r.Context(), "extract stories", "run_id", result.RunID, "error", err)
	}
	s.render(w, r, http.StatusOK, "run.html", newRunView(e, result, s.pipeline.Stages(), list))
}

func (s *Server) handleResultJSON(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(e.Run.Result()); err != nil {
		s.logger.ErrorContext(r.Context(), "encode result", "error", err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	img := e.Run.Request().Image
	if img == nil {
		http.Error(w, "run has no image", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", img.MimeType())
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(img.Data)
}

// mockupDocument returns the extracted mockup of a run, it writes a 404 when there is none
func (s *Server) mockupDocument(w http.ResponseWriter, r *http.Request) (*Entry, string, bool) {
	e, ok := s.entry(w, r)
	if !ok {
		return nil, "", false
	}
	doc := e.Run.Result().Output(pipeline.StageMockup)
	if doc == "" {
		http.Error(w, "mockup not available", http.StatusNotFound)
		return nil, "", false
	}
	return e, doc, true
}

func writeSandboxed(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Content-Security-Policy", sandboxPolicy)
	io.WriteString(w, doc)
}

func (s *Server) handleMockup(w http.ResponseWriter, r *http.Request) {
	if _, doc, ok := s.mockupDocument(w, r); ok {
		writeSandboxed(w, doc)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := s.mockupDocument(w, r)
	if !ok {
		return
	}
	fragment, err := mockup.Preview(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeSandboxed(w, fragment)
}

func (s *Server) handleAnnotated(w http.ResponseWriter, r *http.Request) {
	e, doc, ok := s.mockupDocument(w, r)
	if !ok {
		return
	}
	list, err := e.Stories(r.Context(), s.extractor)
	if err != nil {
		s.logger.WarnContext(r.Context(), "extract stories", "run_id", e.Run.ID(), "error", err)
	}
	annotated, matched, err := mockup.Annotate(doc, list.SortByPriority().Texts())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.DebugContext(r.Context(), "mockup annotated", "run_id", e.Run.ID(), "stories", len(list.Stories), "matched", len(matched))
	writeSandboxed(w, annotated)
}

func attachment(w http.ResponseWriter, contentType string, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (s *Server) handleMockupDownload(w http.ResponseWriter, r *http.Request) {
	e, doc, ok := s.mockupDocument(w, r)
	if !ok {
		return
	}
	attachment(w, contentTypeHTML, fmt.Sprintf("mockup-%s.html", e.Run.ID()))
	io.WriteString(w, doc)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	list, err := e.Stories(r.Context(), s.extractor)
	if err != nil {
		s.logger.WarnContext(r.Context(), "extract stories", "run_id", e.Run.ID(), "error", err)
	}
	md, err := report.Markdown(e.Run.Result(), list)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	attachment(w, contentTypeMarkdown, fmt.Sprintf("ux-review-%s.md", e.Run.ID()))
	io.WriteString(w, md)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	list, err := e.Stories(r.Context(), s.extractor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if len(list.Stories) == 0 {
		http.Error(w, "no user stories", http.StatusNotFound)
		return
	}
	attachment(w, contentTypeXLSX, fmt.Sprintf("user-stories-%s.xlsx", e.Run.ID()))
	if err := stories.WriteWorkbook(w, list); err != nil {
		s.logger.ErrorContext(r.Context(), "write workbook", "run_id", e.Run.ID(), "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "healthy",
		"provider": s.status.Provider,
		"runs":     s.registry.Len(),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	buf := new(strings.Builder)
	if err := s.templates.ExecuteTemplate(buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	io.WriteString(w, buf.String())
}
