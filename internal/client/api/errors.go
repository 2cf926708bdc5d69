package api

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/httpx"
)

// Error is a non-2xx API answer. It unwraps to the matching common sentinel
// so callers can use errors.Is(err, common.ErrNotFound) and friends.
type Error struct {
	StatusCode int
	Body       *httpx.ErrorBody
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Body.Code, e.Body.Message)
	if e.Body.RequestID != "" {
		msg += " (request " + e.Body.RequestID + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrConflict
	case http.StatusUnprocessableEntity:
		return &common.ValidationError{Fields: e.Body.Errors}
	}
	return nil
}

func newError(resp *http.Response) *Error {
	return &Error{StatusCode: resp.StatusCode, Body: httpx.DecodeError(resp)}
}
