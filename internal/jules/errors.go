package jules

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const unknownErrorMessage = "an unknown error occurred"

// APIError is a non-2xx response from the Jules API.
type APIError struct {
	StatusCode     int
	Status         string
	UpstreamCode   int
	UpstreamStatus string
	Message        string
	Body           string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Jules API error %d: %s", e.StatusCode, e.Message)
}

// NetworkError marks a failure to reach the Jules API at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error connecting to Jules API: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

type errorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// newAPIError builds an APIError from a failed response. A structured
// error body supplies the message; otherwise the status text is used and
// a non-JSON body is appended.
func newAPIError(resp *http.Response, body []byte) *APIError {
	statusText := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if statusText == "" {
		statusText = http.StatusText(resp.StatusCode)
	}
	trimmed := strings.TrimSpace(string(body))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     statusText,
		Message:    statusText,
		Body:       trimmed,
	}

	declaredJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	if declaredJSON || strings.HasPrefix(trimmed, "{") {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			if eb.Error != nil {
				apiErr.UpstreamCode = eb.Error.Code
				apiErr.UpstreamStatus = eb.Error.Status
				if eb.Error.Message != "" {
					apiErr.Message = eb.Error.Message
				}
			}
			return apiErr
		}
		if declaredJSON {
			return apiErr
		}
	}

	if trimmed != "" {
		apiErr.Message = statusText + " - " + trimmed
	}
	return apiErr
}

// ErrorMessage turns any error into text safe to show to a caller.
func ErrorMessage(err error) string {
	if err == nil {
		return unknownErrorMessage
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return unknownErrorMessage
	}
	return msg
}
