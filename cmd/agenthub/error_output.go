package main

import (
	"encoding/json"
	"fmt"
	"strings"

	coreerrors "github.com/agenthub-dev/agenthub/core/errors"
)

// writeJSONOutput emits a single-line JSON envelope and backfills error
// metadata so machine consumers always see code, category, and hint fields.
func writeJSONOutput(output any, exitCode int) int {
	encoded, err := marshalOutputWithErrorEnvelope(output, exitCode)
	if err != nil {
		fmt.Println(`{"ok":false,"error":"failed to encode output","error_code":"encode_failed","error_category":"internal_failure"}`)
		return exitInternalFailure
	}
	fmt.Println(string(encoded))
	return exitCode
}

func marshalOutputWithErrorEnvelope(output any, exitCode int) ([]byte, error) {
	encoded, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	result := map[string]any{}
	if err := json.Unmarshal(encoded, &result); err != nil {
		return nil, err
	}
	if strings.TrimSpace(asString(result["correlation_id"])) == "" {
		if correlationID := currentCorrelationID(); correlationID != "" {
			result["correlation_id"] = correlationID
		}
	}
	errorText := strings.TrimSpace(asString(result["error"]))
	if errorText == "" {
		return json.Marshal(result)
	}
	if strings.TrimSpace(asString(result["error_code"])) == "" {
		result["error_code"] = defaultErrorCode(exitCode)
	}
	if strings.TrimSpace(asString(result["error_category"])) == "" {
		result["error_category"] = string(defaultErrorCategory(exitCode))
	}
	if strings.TrimSpace(asString(result["hint"])) == "" {
		if hint := defaultHint(exitCode); hint != "" {
			result["hint"] = hint
		}
	}
	return json.Marshal(result)
}

// writeCommandError routes one classified error through either the JSON
// envelope or a plain stderr-style line, returning the mapped exit code.
func writeCommandError(jsonOutput bool, command string, err error) int {
	exitCode := exitCodeForError(err, exitInternalFailure)
	if jsonOutput {
		return writeJSONOutput(errorEnvelope(err), exitCode)
	}
	fmt.Printf("%s error: %s\n", command, err.Error())
	if hint := coreerrors.HintOf(err); hint != "" {
		fmt.Printf("hint: %s\n", hint)
	}
	return exitCode
}

type commandError struct {
	OK            bool   `json:"ok"`
	Error         string `json:"error"`
	ErrorCode     string `json:"error_code,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`
	Hint          string `json:"hint,omitempty"`
}

func errorEnvelope(err error) commandError {
	return commandError{
		OK:            false,
		Error:         err.Error(),
		ErrorCode:     coreerrors.CodeOf(err),
		ErrorCategory: string(coreerrors.CategoryOf(err)),
		Hint:          coreerrors.HintOf(err),
	}
}

func exitCodeForError(err error, fallbackExit int) int {
	if err == nil {
		return exitOK
	}
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		return exitInvalidInput
	case coreerrors.CategoryVerification:
		return exitVerifyFailed
	case coreerrors.CategoryNotFound:
		return exitNotFound
	case coreerrors.CategoryConflict:
		return exitConflict
	case coreerrors.CategoryIOFailure, coreerrors.CategoryNetworkFailure, coreerrors.CategoryInternalFailure:
		return exitInternalFailure
	}
	return fallbackExit
}

func defaultErrorCategory(exitCode int) coreerrors.Category {
	switch exitCode {
	case exitInvalidInput:
		return coreerrors.CategoryInvalidInput
	case exitVerifyFailed:
		return coreerrors.CategoryVerification
	case exitNotFound:
		return coreerrors.CategoryNotFound
	case exitConflict:
		return coreerrors.CategoryConflict
	default:
		return coreerrors.CategoryInternalFailure
	}
}

func defaultErrorCode(exitCode int) string {
	switch exitCode {
	case exitInvalidInput:
		return "invalid_input"
	case exitVerifyFailed:
		return "verification_failed"
	case exitNotFound:
		return "not_found"
	case exitConflict:
		return "conflict"
	default:
		return "internal_failure"
	}
}

func defaultHint(exitCode int) string {
	switch exitCode {
	case exitInvalidInput:
		return "check command usage and the manifest schema"
	case exitVerifyFailed:
		return "re-run verify after checking manifest integrity"
	case exitNotFound:
		return "run 'agenthub list' to see registered agents"
	default:
		return "retry after checking local environment and logs"
	}
}

func asString(value any) string {
	text, _ := value.(string)
	return text
}
