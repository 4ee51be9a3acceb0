package chat

import "errors"

var (
	// ErrValidation reports malformed input: empty content, a bad
	// addressing mode, or an id the resolver cannot derive from.
	ErrValidation = errors.New("invalid input")
	// ErrMessageNotFound reports an unknown message id.
	ErrMessageNotFound = errors.New("message not found")
	// ErrForbidden reports an edit or delete by a non-owner.
	ErrForbidden = errors.New("forbidden")
	// ErrMessageDeleted reports an edit attempt on a tombstone.
	ErrMessageDeleted = errors.New("message already deleted")
)
