package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDocumentNotFound     = fmt.Errorf("document %w", ErrNotFound)
	ErrEntityNotFound       = fmt.Errorf("entity %w", ErrNotFound)
	ErrDeadlineNotFound     = fmt.Errorf("deadline %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrSuggestionNotFound   = fmt.Errorf("suggestion %w", ErrNotFound)
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTemporary            = errors.New("temporary failure")

	// ErrUploadFailed marks a file that never reached the file storage service.
	ErrUploadFailed = errors.New("upload failed")
	// ErrAnalysisFailed marks an AI analysis that produced no usable reply.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrAssistantBusy is returned when a session already has an exchange in flight.
	ErrAssistantBusy   = errors.New("assistant exchange already in progress")
	ErrAssistantFailed = errors.New("assistant reply failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
