package errors

import (
	"fmt"
	"time"
)

// OperationalError represents enhanced error information for debugging.
//
// It wraps errors with operational context including the document path,
// the node path inside the document, and a timestamp. This enables better
// error tracking when a failure surfaces far from the edit that caused it.
type OperationalError struct {
	Operation  string                 // What operation was being performed
	Document   string                 // Which document (file path or URL)
	NodePath   string                 // Which node inside the document (if applicable)
	Timestamp  time.Time              // When error occurred
	Attributes map[string]interface{} // Additional context (optional)
	Cause      error                  // Underlying error
}

// NewOperationalError creates an OperationalError wrapping an error.
//
// Returns nil if cause is nil (no error to wrap).
//
// Example:
//
//	if err != nil {
//	    return NewOperationalError("saving node", docPath, nodePath, err)
//	}
func NewOperationalError(operation, document, nodePath string, cause error) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation:  operation,
		Document:   document,
		NodePath:   nodePath,
		Timestamp:  time.Now(),
		Attributes: nil,
		Cause:      cause,
	}
}

// NewOperationalErrorWithAttrs creates an OperationalError with additional attributes.
//
// Returns nil if cause is nil (no error to wrap).
//
// Example:
//
//	return NewOperationalErrorWithAttrs(
//	    "validating document",
//	    docPath,
//	    nodePath,
//	    err,
//	    map[string]interface{}{
//	        "schema":   schemaPath,
//	        "docBytes": len(text),
//	    },
//	)
func NewOperationalErrorWithAttrs(operation, document, nodePath string, cause error, attrs map[string]interface{}) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation:  operation,
		Document:   document,
		NodePath:   nodePath,
		Timestamp:  time.Now(),
		Attributes: attrs,
		Cause:      cause,
	}
}

// Error implements the error interface.
//
// Format: "[timestamp] operation: document={path} node={path}: {cause}"
// If the node path is empty, it's omitted from the message.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	timestamp := e.Timestamp.Format(time.RFC3339)

	// Build message components
	var msg string
	if e.NodePath != "" {
		msg = fmt.Sprintf("[%s] %s: document=%s node=%s: %v",
			timestamp,
			e.Operation,
			e.Document,
			e.NodePath,
			e.Cause)
	} else {
		msg = fmt.Sprintf("[%s] %s: document=%s: %v",
			timestamp,
			e.Operation,
			e.Document,
			e.Cause)
	}

	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
