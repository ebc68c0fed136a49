package errors

import (
	stderrors "errors"
)

type ErrorType string

const (
	ErrorTypeAlreadyInitialized ErrorType = "ALREADY_INITIALIZED"
	ErrorTypeNotInitialized     ErrorType = "NOT_INITIALIZED"
	ErrorTypeObjectNotFound     ErrorType = "OBJECT_NOT_FOUND"
	ErrorTypeCommitNotFound     ErrorType = "COMMIT_NOT_FOUND"
	ErrorTypeIndexCorrupt       ErrorType = "INDEX_CORRUPT"
	ErrorTypeObjectCorrupt      ErrorType = "OBJECT_CORRUPT"
	ErrorTypeInvalidHash        ErrorType = "INVALID_HASH"
	ErrorTypeFileRead           ErrorType = "FILE_READ"
	ErrorTypeHeadRead           ErrorType = "HEAD_READ"
	ErrorTypeHistoryCycle       ErrorType = "HISTORY_CYCLE"
	ErrorTypeMissingParent      ErrorType = "MISSING_PARENT"
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same type, so callers can compare against
// the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is checks.
var (
	ErrAlreadyInitialized = &Error{Type: ErrorTypeAlreadyInitialized, Message: "repository already initialized"}
	ErrNotInitialized     = &Error{Type: ErrorTypeNotInitialized, Message: "repository not initialized"}
	ErrObjectNotFound     = &Error{Type: ErrorTypeObjectNotFound, Message: "object not found"}
	ErrCommitNotFound     = &Error{Type: ErrorTypeCommitNotFound, Message: "commit not found"}
	ErrIndexCorrupt       = &Error{Type: ErrorTypeIndexCorrupt, Message: "staging index corrupt"}
	ErrObjectCorrupt      = &Error{Type: ErrorTypeObjectCorrupt, Message: "object corrupt"}
	ErrInvalidHash        = &Error{Type: ErrorTypeInvalidHash, Message: "invalid content hash"}
	ErrFileRead           = &Error{Type: ErrorTypeFileRead, Message: "reading file"}
	ErrHeadRead           = &Error{Type: ErrorTypeHeadRead, Message: "reading HEAD"}
	ErrHistoryCycle       = &Error{Type: ErrorTypeHistoryCycle, Message: "history cycle"}
	ErrMissingParent      = &Error{Type: ErrorTypeMissingParent, Message: "parent commit missing"}
)

func New(t ErrorType, message string, err error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Err:     err,
	}
}

func AlreadyInitialized(root string) *Error {
	return New(ErrorTypeAlreadyInitialized, "repository already initialized in "+root, nil)
}

func NotInitialized(root string, err error) *Error {
	return New(ErrorTypeNotInitialized, "repository not initialized in "+root, err)
}

func ObjectNotFound(hash string) *Error {
	return New(ErrorTypeObjectNotFound, "object not found: "+hash, nil)
}

func CommitNotFound(hash string, err error) *Error {
	return New(ErrorTypeCommitNotFound, "commit not found: "+hash, err)
}

func IndexCorrupt(err error) *Error {
	return New(ErrorTypeIndexCorrupt, "staging index corrupt", err)
}

func ObjectCorrupt(hash string) *Error {
	return New(ErrorTypeObjectCorrupt, "object content does not match hash: "+hash, nil)
}

func InvalidHash(hash string) *Error {
	return New(ErrorTypeInvalidHash, "invalid content hash: "+hash, nil)
}

func FileRead(path string, err error) *Error {
	return New(ErrorTypeFileRead, "reading file "+path, err)
}

func HeadRead(err error) *Error {
	return New(ErrorTypeHeadRead, "reading HEAD", err)
}

func HistoryCycle(hash string) *Error {
	return New(ErrorTypeHistoryCycle, "commit visited twice while walking history: "+hash, nil)
}

// MissingParent reports that hash exists but its parent cannot be resolved.
// The cause is kept as text only: it is usually a COMMIT_NOT_FOUND for the
// parent, which must not read as the child itself being absent.
func MissingParent(hash, parent string, cause error) *Error {
	msg := "parent " + parent + " of commit " + hash + " cannot be resolved"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return New(ErrorTypeMissingParent, msg, nil)
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	return stderrors.Is(err, &Error{Type: t})
}
