package galaxy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionInvalid matches backend 401 responses that end the session.
var ErrSessionInvalid = errors.New("galaxy: session invalid")

// GenericMessage is shown when the backend gives no usable reason.
const GenericMessage = "Something went wrong. Please try again."

// UnreachableMessage is shown when the backend could not be reached.
const UnreachableMessage = "Unable to reach the server. Please try again."

var sessionInvalidPhrases = []string{
	"session expired",
	"login required",
	"invalid access token",
	"invalid refresh token",
}

// APIError is a non-2xx backend response.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("galaxy: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("galaxy: %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrSessionInvalid) match recognised 401s.
func (e *APIError) Is(target error) bool {
	return target == ErrSessionInvalid && e.sessionInvalid()
}

func (e *APIError) sessionInvalid() bool {
	if e.Status != http.StatusUnauthorized {
		return false
	}
	msg := strings.ToLower(e.Message)
	for _, phrase := range sessionInvalidPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// IsSessionInvalid reports whether err should force a logout.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}

// IsForbidden reports a permission denial from the backend.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericMessage
	}
	return UnreachableMessage
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorEnvelope) text() string {
	if s := strings.TrimSpace(e.Error); s != "" {
		return s
	}
	return strings.TrimSpace(e.Message)
}
