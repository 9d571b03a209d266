package errors

import "errors"

var (
	ErrTaskFileNotFound    = errors.New("task file not found")
	ErrTaskFileParseFailed = errors.New("task file parsing failed")
	ErrInvalidInput        = errors.New("invalid publish input")
	ErrConfigInvalid       = errors.New("integration configuration invalid")
	ErrAuthMissing         = errors.New("authorization missing")
	ErrRemoteFailed        = errors.New("remote SCM operation failed")
	ErrPushFailed          = errors.New("git publish failed")
	ErrFileSystemFailed    = errors.New("filesystem operation failed")
)

type StampKitError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *StampKitError) Error() string {
	return e.OriginalErr.Error()
}

func (e *StampKitError) Unwrap() error {
	return e.OriginalErr
}

func NewStampKitError(errorType error, context, cause, suggestion string, originalErr error) *StampKitError {
	return &StampKitError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewTaskFileError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrTaskFileNotFound, context, cause, suggestion, originalErr)
}

func NewParseError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrTaskFileParseFailed, context, cause, suggestion, originalErr)
}

func NewInvalidInputError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrInvalidInput, context, cause, suggestion, originalErr)
}

func NewConfigError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewAuthError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrAuthMissing, context, cause, suggestion, originalErr)
}

func NewRemoteError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrRemoteFailed, context, cause, suggestion, originalErr)
}

func NewPushError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrPushFailed, context, cause, suggestion, originalErr)
}

func NewFileSystemError(context, cause, suggestion string, originalErr error) *StampKitError {
	return NewStampKitError(ErrFileSystemFailed, context, cause, suggestion, originalErr)
}
