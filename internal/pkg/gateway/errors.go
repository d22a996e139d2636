package gateway

import (
	"fmt"
	"net/http"
)

// TransportError is returned by the list operations when the exchange with
// the remote service did not succeed.
type TransportError struct {
	Op         string
	StatusCode int // zero when no response was received.
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CommandError is returned by SendCommand. Message is the response body
// when the service sent one.
type CommandError struct {
	StatusCode int
	Message    string
	Err        error
}

func newStatusCommandError(status int, body string) *CommandError {
	if body == "" {
		body = fmt.Sprintf("Failed to send command: %d", status)
	}
	return &CommandError{StatusCode: status, Message: body}
}

func (e *CommandError) Error() string {
	if e.Err != nil && e.Message == "" {
		return "send command: " + e.Err.Error()
	}
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
