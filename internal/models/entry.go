package models

import (
	"path/filepath"
	"strings"
	"time"
)

// TargetFormat is the output encoding requested for an entry.
type TargetFormat string

const (
	FormatWebP TargetFormat = "webp"
	FormatPNG  TargetFormat = "png"
	FormatJPEG TargetFormat = "jpeg"
)

// DefaultTargetFormat is assigned to every entry on upload.
const DefaultTargetFormat = FormatWebP

// Valid reports whether f is one of the supported target formats.
func (f TargetFormat) Valid() bool {
	switch f {
	case FormatWebP, FormatPNG, FormatJPEG:
		return true
	}
	return false
}

// MIME returns the MIME type for the format (e.g. "image/webp").
func (f TargetFormat) MIME() string {
	return "image/" + string(f)
}

// Extension returns the file extension for the format, including the dot.
func (f TargetFormat) Extension() string {
	return "." + string(f)
}

// EntryStatus represents an entry's position in the conversion lifecycle.
type EntryStatus string

const (
	StatusPending    EntryStatus = "pending"
	StatusConverting EntryStatus = "converting"
	StatusConverted  EntryStatus = "converted"
	StatusError      EntryStatus = "error"
)

// Terminal reports whether the status can no longer change without a reset.
func (s EntryStatus) Terminal() bool {
	return s == StatusConverted || s == StatusError
}

// Phase is the overall batch lifecycle stage, derived from entry statuses.
type Phase string

const (
	PhaseUpload    Phase = "upload"
	PhaseManaging  Phase = "managing"
	PhaseConverted Phase = "converted"
)

// SourceFile is one accepted upload before it becomes a tracked entry.
type SourceFile struct {
	Name         string
	MIMEType     string
	LastModified int64 // Unix milliseconds, as reported by the browser
	Data         []byte
}

// FileEntry tracks one image through the pending -> converting ->
// converted/error lifecycle. Original and Result hold the raw bytes and are
// never serialized; everything else is safe to hand to the frontend.
type FileEntry struct {
	ID             string       `json:"id"`
	OriginalName   string       `json:"originalName"`
	OriginalFormat string       `json:"originalFormat"`
	OriginalSize   int64        `json:"originalSize"`
	UploadedAt     time.Time    `json:"uploadedAt"`
	TargetFormat   TargetFormat `json:"targetFormat"`
	Status         EntryStatus  `json:"status"`
	Error          string       `json:"error,omitempty"`
	ResultName     string       `json:"resultName,omitempty"`
	ResultMIME     string       `json:"resultMime,omitempty"`
	ResultSize     int64        `json:"resultSize,omitempty"`
	ConvertedAt    *time.Time   `json:"convertedAt,omitempty"`

	Original []byte `json:"-"`
	Result   []byte `json:"-"`
}

// Stem returns the original name without its extension.
func (e *FileEntry) Stem() string {
	return strings.TrimSuffix(e.OriginalName, filepath.Ext(e.OriginalName))
}

// Clone returns a shallow copy of the entry. Blob slices are shared; they
// are treated as immutable once set.
func (e *FileEntry) Clone() *FileEntry {
	c := *e
	return &c
}

// BatchInfo is the batch-level view returned by the API.
type BatchInfo struct {
	ID        string       `json:"id"`
	Phase     Phase        `json:"phase"`
	CreatedAt time.Time    `json:"createdAt"`
	Entries   []*FileEntry `json:"entries"`
}
