package testing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// HTTPErrorPayload is a shape of an error response body
type HTTPErrorPayload struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"error"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorPayload builds expected error payload
func NewHTTPErrorPayload(statusCode int, status string, message string) HTTPErrorPayload {
	return HTTPErrorPayload{StatusCode: statusCode, Status: status, Message: message}
}

// NewValidationFailedPayload builds expected payload of a field validation error
func NewValidationFailedPayload(fields map[string]string) HTTPErrorPayload {
	return HTTPErrorPayload{
		StatusCode: http.StatusBadRequest,
		Status:     http.StatusText(http.StatusBadRequest),
		Message:    "ValidationFailed",
		Fields:     fields,
	}
}

// AssertHTTPErrorResponse asserts the recorded response is a given error
func AssertHTTPErrorResponse(t *testing.T, want HTTPErrorPayload, recorder *httptest.ResponseRecorder) bool {
	if !assert.Equal(t, want.StatusCode, recorder.Code) {
		return false
	}
	if !assert.Equal(t, "application/json", recorder.Header().Get("content-type")) {
		return false
	}
	var got HTTPErrorPayload
	if !JSONUnmarshalReader(t, recorder.Body, &got) {
		return false
	}
	return assert.Equal(t, want, got)
}
