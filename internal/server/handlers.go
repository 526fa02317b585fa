package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"meetscribe/internal/audio"
	"meetscribe/internal/domain"
	"meetscribe/internal/logger"
	"meetscribe/internal/render"
	"meetscribe/internal/usecase"
)

type sessionResponse struct {
	ID       string                   `json:"id"`
	Snapshot domain.WorkspaceSnapshot `json:"snapshot"`
}

type textRequest struct {
	Text string `json:"text"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, ws := s.sessions.create()
	logger.Debug(r.Context(), "session created", "session", id.String(), "open_sessions", s.sessions.count())
	_ = writeJSON(w, http.StatusCreated, sessionResponse{ID: id.String(), Snapshot: ws.Snapshot()})
}

func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*usecase.Workspace, bool) {
	ws, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ws, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, ws *usecase.Workspace) {
	_ = writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), Snapshot: ws.Snapshot()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	s.respond(w, r, ws)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeError(w, errSessionNotFound)
		return
	}
	logger.Debug(r.Context(), "session deleted", "session", chi.URLParam(r, "id"), "open_sessions", s.sessions.count())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setTranscript(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ws.SetTranscript(req.Text)
	s.respond(w, r, ws)
}

func (s *Server) setTitle(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ws.SetTitleHint(req.Title)
	s.respond(w, r, ws)
}

func (s *Server) setFilter(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var req filterRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ws.SetFilter(req.Filter)
	s.respond(w, r, ws)
}

func (s *Server) uploadTranscript(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	name, mimeType, data, err := readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := ws.UploadTranscript(name, mimeType, data); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, ws)
}

func (s *Server) transcribeAudio(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	name, mimeType, data, err := readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if mediaType, _, _ := mime.ParseMediaType(mimeType); !strings.HasPrefix(mediaType, "audio/") {
		writeError(w, fmt.Errorf("%w: %s", domain.ErrInvalidInput, name))
		return
	}
	if s.deps.Transcriber == nil {
		writeError(w, fmt.Errorf("%w: no transcriber configured", domain.ErrTranscription))
		return
	}

	text, err := s.deps.Transcriber.Transcribe(r.Context(), data, mimeType)
	if err == nil && strings.TrimSpace(text) == "" {
		err = domain.ErrTranscription
	}
	if err != nil {
		logger.Warn(r.Context(), "transcription failed", "file", name, "error", err)
		writeError(w, err)
		return
	}
	ws.AcceptTranscription(text, usecase.SourceFile)
	s.respond(w, r, ws)
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	if _, err := ws.Summarize(r.Context()); err != nil {
		if !errors.Is(err, domain.ErrEmptyInput) && !errors.Is(err, domain.ErrSummaryInFlight) {
			logger.Warn(r.Context(), "summarization failed", "error", err)
		}
		writeError(w, err)
		return
	}
	s.respond(w, r, ws)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	ws.Clear()
	s.respond(w, r, ws)
}

func (s *Server) exportMarkdown(w http.ResponseWriter, r *http.Request) {
	result, ok := s.result(w, r)
	if !ok {
		return
	}
	attachment(w, "text/markdown; charset=utf-8", render.ExportFilename(result.Title, "md"))
	_, _ = io.WriteString(w, render.Markdown(result))
}

func (s *Server) exportDocx(w http.ResponseWriter, r *http.Request) {
	result, ok := s.result(w, r)
	if !ok {
		return
	}
	data, err := render.DocxBytes(result)
	if err != nil {
		logger.ErrorErr(r.Context(), "docx export failed", err)
		writeError(w, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", render.ExportFilename(result.Title, "docx"))
	_, _ = w.Write(data)
}

func (s *Server) notification(w http.ResponseWriter, r *http.Request) {
	result, ok := s.result(w, r)
	if !ok {
		return
	}
	text, err := render.NotificationText(result)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, textRequest{Text: text})
}

func (s *Server) speech(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, domain.ErrEmptyInput)
		return
	}
	if s.deps.Speech == nil {
		writeError(w, fmt.Errorf("%w: no speech synthesizer configured", domain.ErrSpeechSynthesis))
		return
	}

	speech, err := s.deps.Speech.SynthesizeSpeech(r.Context(), req.Text)
	if err != nil {
		logger.Warn(r.Context(), "speech synthesis failed", "error", err)
		writeError(w, err)
		return
	}
	wav, err := audio.EncodeWAV(speech.PCM, speech.SampleRate, speech.Channels)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", domain.ErrSpeechSynthesis, err))
		return
	}
	w.Header().Set("Content-Type", audio.WAVMIMEType)
	_, _ = w.Write(wav)
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) (domain.SummaryResult, bool) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return domain.SummaryResult{}, false
	}
	result, ok := ws.Result()
	if !ok {
		writeError(w, errNoResult)
		return domain.SummaryResult{}, false
	}
	return result, true
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func attachment(w http.ResponseWriter, contentType string, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
