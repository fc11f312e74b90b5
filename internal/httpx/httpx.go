// Package httpx holds the JSON response envelope and the error boundary shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// WriteJSON writes data wrapped in the response envelope.
func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error translates err into its status via apperr and writes the envelope.
// Server-side kinds are logged at error level, client-side ones at debug.
func Error(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.Status(kind)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed", "kind", kind.String(), "err", err)
		} else {
			logger.Debugw("request rejected", "kind", kind.String(), "err", err)
		}
	}
	WriteJSON(w, status, nil, apperr.MessageOf(err))
}

// DecodeJSON decodes the request body into dest. An empty body leaves dest untouched.
func DecodeJSON(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.BadRequest("invalid payload")
	}
	return nil
}

// PathID parses the named path wildcard as a snowflake id.
func PathID(r *http.Request, name string) (snowflake.ID, error) {
	id, err := utilities.ParseID(r.PathValue(name))
	if err != nil {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}
