// Package b2 is a minimal client for the Backblaze B2 native API: account
// authorization, upload-URL leases, integrity-checked uploads, prefix
// listing and file-version deletion. Each operation is a single remote call
// with no retry or caching; batching and session reuse are the caller's
// concern.
package b2

import "github.com/rs/zerolog"

// authorizeURL is the fixed entry point; every other endpoint is derived
// from the session it returns.
const authorizeURL = "https://api.backblazeb2.com/b2api/v3/b2_authorize_account"

// listPageSize caps the single listing page used to resolve a key to a file id.
const listPageSize = 100

// Credentials is a long-lived B2 application key pair. Opaque; only ever
// turned into a Basic-auth header.
type Credentials struct {
	KeyID  string
	AppKey string
}

// Session is the short-lived authorization context for one batch of
// operations. It is never persisted or shared across batches.
type Session struct {
	APIURL      string
	DownloadURL string
	Token       string
}

// UploadLease is a one-shot upload endpoint plus token. A lease may serve
// several sequential uploads, but once an upload using it fails it must be
// treated as exhausted: the remote side may have invalidated it.
type UploadLease struct {
	UploadURL string
	Token     string
}

// StoredObject identifies a stored file. ID is the remote file-version id,
// required for deletion; Name is the storage key.
type StoredObject struct {
	ID   string
	Name string
	Size int64
}

// DeleteOutcome reports the result of a composed delete.
type DeleteOutcome struct {
	Deleted bool
	Message string
}

// Client talks to the B2 API through a Transport. Safe for concurrent use.
type Client struct {
	rt  Transport
	log zerolog.Logger
}

// NewClient creates a Client on the given transport.
func NewClient(rt Transport, logger zerolog.Logger) *Client {
	return &Client{
		rt:  rt,
		log: logger.With().Str("component", "b2").Logger(),
	}
}
