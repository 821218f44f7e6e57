// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, along with its
// associated metadata, the admin listing/summary shapes and the relevant error definitions.
package entity

import (
	"errors"
	"time"
)

// DefaultCreatedBy is stored when the client identity is unknown.
const DefaultCreatedBy = "anonymous"

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrOriginalURLExists is returned when an active record for the original URL already exists.
	ErrOriginalURLExists = errors.New("original url exists")
	// ErrURLNotFound is returned when an active URL with the specified short code or id cannot be found.
	ErrURLNotFound = errors.New("url not found")
)

// URL represents a shortened URL.
type URL struct {
	ID          int64     // ID is the unique identifier of the URL in the database.
	ShortCode   string    // ShortCode is the generated code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	URLStats              // URLStats contains statistics about the URL.
	CreatedBy   string    // CreatedBy identifies the client that shortened the URL.
	IsActive    bool      // IsActive is false once the URL has been soft-deleted.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	Clicks       int64      // Clicks is the number of times the shortened URL has been followed.
	LastAccessed *time.Time // LastAccessed is nil until the first redirect.
}
