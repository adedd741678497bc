package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"sewa/internal/apperr"
)

const MaxBodyBytes = 1 << 20

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindInvalidCredential: http.StatusUnauthorized,
	apperr.KindExpired:           http.StatusGone,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidState:      http.StatusConflict,
	apperr.KindDependencyFailure: http.StatusBadGateway,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindInternal:          http.StatusInternalServerError,
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
	Fields  []string    `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps err to a status code. Internal details are logged, not returned.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	body := ErrorBody{Kind: kind, Message: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Message = ae.Message
		body.Fields = ae.Fields
	}
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		body.Message = "internal server error"
	}
	respondJSON(w, code, body)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
