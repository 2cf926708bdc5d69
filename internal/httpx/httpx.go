// Package httpx holds the JSON request/response helpers shared by the API
// server and its Go client.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

func (e *ErrorBody) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewRequestID() string { return "req_" + uuid.NewString() }

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes a single JSON value from the request body into dst,
// rejecting unknown fields. An empty body is reported as io.EOF.
func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// WriteError writes an ErrorBody tagged with the request id of r.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string][]string) {
	id := RequestID(r.Context())
	if id == "" {
		id = NewRequestID()
	}
	WriteJSON(w, status, &ErrorBody{Code: code, Message: message, Errors: fields, RequestID: id})
}

// DecodeError reads an ErrorBody from a failed response. Bodies that are not
// JSON still produce an ErrorBody carrying the status text.
func DecodeError(resp *http.Response) *ErrorBody {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	eb := &ErrorBody{}
	if err := json.Unmarshal(body, eb); err != nil || eb.Code == "" {
		eb.Code = http.StatusText(resp.StatusCode)
		if eb.Message == "" {
			eb.Message = string(body)
		}
	}
	if eb.RequestID == "" {
		eb.RequestID = resp.Header.Get(RequestIDHeader)
	}
	return eb
}
