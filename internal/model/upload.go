package model

import "time"

// UploadItem is one file handed to the uploader. The payload buffer is owned
// by the caller; the service only reads it. Extension is optional and is
// derived from OriginalName when empty.
type UploadItem struct {
	Payload      []byte
	OriginalName string
	Extension    string
}

// UploadResult annotates one UploadItem after a batch run. Either URL is set
// or Error explains why the file was skipped.
type UploadResult struct {
	OriginalName string `json:"original_name"`
	StorageKey   string `json:"storage_key,omitempty"`
	URL          string `json:"url,omitempty"`
	Size         int64  `json:"size,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RemovedItem is one entry of a gallery-removal notification from the host.
// Type tags which storage backend produced the URL.
type RemovedItem struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// UploadRecord is a persisted history row for a completed upload.
type UploadRecord struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StorageKey  string    `json:"storage_key"`
	ObjectID    string    `json:"object_id"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
