package adf

import "errors"

var (
	// ErrSectionNotFound reports that no heading matched a section query.
	ErrSectionNotFound = errors.New("section not found")

	// ErrExtensionNotFound reports that no bodied extension matched a
	// title query.
	ErrExtensionNotFound = errors.New("extension not found")

	// ErrMalformed reports input that decodes to neither a document
	// object nor a node array.
	ErrMalformed = errors.New("malformed document")
)
