package core

// Error codes carried by error events.
const (
	ErrCodeNotHost    = "not_host"
	ErrCodeBadRequest = "bad_request"
	ErrCodeInternal   = "internal_error"
)

// CoreError wraps a code and a human-readable message. Only the message is
// put on the wire; the code is for logs and tests.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
