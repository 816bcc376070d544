package pipeline

import "fmt"

// ValidationError rejects a file before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError aborts a run: nothing downstream of a failed object-store
// write is attempted.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersistenceError ends a run after extraction/analysis effort was already
// spent; upstream side effects are not undone.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UserMessage maps a pipeline error to something displayable.
func UserMessage(err error) string {
	switch e := err.(type) {
	case *ValidationError:
		return e.Message
	case *StorageError:
		return "Failed to upload file to storage"
	case *PersistenceError:
		return "Failed to save document record"
	default:
		return "Document processing failed"
	}
}
