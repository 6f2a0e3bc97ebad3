// Package repository defines the data access layer and the error values that
// are reused across it. These sentinel values allow higher layers such as
// services and handlers to classify a failure without inspecting messages:
// services wrap them with a short human-readable reason and handlers map
// them onto HTTP status codes.
package repository

import (
	"errors"

	"github.com/iliyamo/campaign-companion/internal/database"
)

// ErrBadRequest signals a missing or malformed required input (HTTP 400).
var ErrBadRequest = errors.New("bad request")

// ErrUnauthorized signals a missing or invalid identity (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is authenticated but lacks the
// permission for the target resource (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when a referenced entity does not exist (HTTP 404).
var ErrNotFound = errors.New("not found")

// ErrConflict signals a uniqueness or capacity violation (HTTP 409).
var ErrConflict = errors.New("conflict")

// translate maps store constraint violations onto ErrConflict and leaves any
// other error untouched.
func translate(err error) error {
	if database.IsDuplicate(err) {
		return errors.Join(ErrConflict, err)
	}
	return err
}
