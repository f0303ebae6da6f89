package store

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned by implementations for reads of absent documents
// where an error is preferred over an Exists=false snapshot.
var ErrNotFound = errors.New("document not found")

// ErrPermissionDenied marks access failures from the memory store; the
// Firestore implementation surfaces the real grpc status instead.
var ErrPermissionDenied = errors.New("permission denied")

// IsNotFound reports whether the error means the document does not exist
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return status.Code(err) == codes.NotFound
}

// IsPermissionDenied reports whether the error means the caller's session is
// no longer valid or lacks access. Callers treat this as "session ended".
func IsPermissionDenied(err error) bool {
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return true
	}
	return false
}
