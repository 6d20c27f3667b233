package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lighter-relay/internal/lighter/rest"
)

// APIError is a structured venue rejection. ShapeMismatch marks the
// rejection as an interface problem (unknown fields, wrong arity, type
// errors) rather than a business refusal; only those advance the shape
// probe.
type APIError struct {
	Status        int
	Code          int
	Message       string
	ShapeMismatch bool
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("venue error %d (http %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("venue error (http %d): %s", e.Status, e.Message)
}

// IsShapeMismatch reports whether err is a venue rejection caused by the
// call shape rather than the order itself.
func IsShapeMismatch(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ShapeMismatch
}

var shapeMismatchMarkers = []string{
	"unknown field",
	"unexpected field",
	"unexpected keyword",
	"unexpected parameter",
	"wrong number of",
	"positional",
	"arity",
	"invalid type",
	"type error",
	"cannot unmarshal",
}

// classifyError turns raw HTTP failures into APIErrors. Transport errors
// (timeouts, refused connections) pass through untouched.
func classifyError(err error) error {
	var statusErr *rest.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	apiErr := &APIError{Status: statusErr.Status, Message: statusErr.Body}
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal([]byte(statusErr.Body), &body); jsonErr == nil {
		apiErr.Code = body.Code
		if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	apiErr.ShapeMismatch = looksLikeShapeMismatch(statusErr.Status, apiErr.Message)
	return apiErr
}

func looksLikeShapeMismatch(status int, message string) bool {
	if status == 422 {
		return true
	}
	if status < 400 || status >= 500 {
		return false
	}
	lower := strings.ToLower(message)
	for _, marker := range shapeMismatchMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
