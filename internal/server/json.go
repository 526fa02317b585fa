package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"meetscribe/internal/domain"
)

var (
	errSessionNotFound = errors.New("session not found")
	errBadRequest      = errors.New("malformed request")
	errNoResult        = errors.New("no summary available yet")
)

func parseJSON(r *http.Request, model any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: missing request body", errBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(model); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string           `json:"error"`
	Code  domain.ErrorCode `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	_ = writeJSON(w, statusFor(err), errorBody{Error: messageFor(err), Code: domain.CodeOf(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, errNoResult):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSummaryInFlight), errors.Is(err, domain.ErrAudioBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTranscription), errors.Is(err, domain.ErrSummarization), errors.Is(err, domain.ErrSpeechSynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, errSessionNotFound):
		return "Session not found."
	case errors.Is(err, errNoResult):
		return "No summary has been generated yet."
	default:
		return domain.UserMessage(err)
	}
}
