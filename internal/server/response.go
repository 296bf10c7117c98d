package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spigell/scholarship-matcher/internal/intake"
)

// Response is the envelope for error replies.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func GeneralError(err error) Response {
	return Response{Status: StatusError, Error: err.Error()}
}

// ValidationError flattens intake problems into one message.
func ValidationError(err error) Response {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return Response{Status: StatusError, Error: strings.Join(verr.Problems, ", ")}
	}
	return GeneralError(err)
}
