package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid     = "CONFIG_INVALID"
	ErrCodeNotLoggedIn       = "NOT_LOGGED_IN"
	ErrCodeLoginFailed       = "LOGIN_FAILED"
	ErrCodeEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrCodeAmbiguous         = "AMBIGUOUS_MATCH"
	ErrCodeEntryDeleted      = "ENTRY_DELETED"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotImplemented    = "NOT_IMPLEMENTED"
	ErrCodeCommandFailed     = "COMMAND_FAILED"
	ErrCodeDependencyMissing = "DEPENDENCY_MISSING"
	ErrCodeUnknown           = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var lpErr *errors.Error
	if !stderrors.As(err, &lpErr) {
		return &JSONError{
			Code:    ErrCodeUnknown,
			Message: err.Error(),
		}
	}

	jsonErr := &JSONError{
		Code:       mapErrorCode(lpErr.Code, lpErr.Message),
		Message:    lpErr.Message,
		Suggestion: lpErr.Suggestion,
	}

	// Failed lpass invocations carry their exit code and stderr.
	var cmdErr *exec.CommandError
	if stderrors.As(err, &cmdErr) {
		jsonErr.Details = map[string]interface{}{
			"exit_code": cmdErr.ExitCode,
			"stderr":    cmdErr.Stderr,
		}
	}
	return jsonErr
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)
	switch internalCode {
	case errors.ErrConfig:
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrLogin:
		if strings.Contains(msgLower, "not logged in") {
			return ErrCodeNotLoggedIn
		}
		return ErrCodeLoginFailed
	case errors.ErrNotFound:
		return ErrCodeEntryNotFound
	case errors.ErrAmbiguous:
		return ErrCodeAmbiguous
	case errors.ErrDeleted:
		return ErrCodeEntryDeleted
	case errors.ErrInput:
		return ErrCodeInvalidInput
	case errors.ErrNotImplemented:
		return ErrCodeNotImplemented
	case errors.ErrCommand:
		return ErrCodeCommandFailed
	case errors.ErrSpawn, errors.ErrDependency:
		return ErrCodeDependencyMissing
	}
	return ErrCodeUnknown
}
