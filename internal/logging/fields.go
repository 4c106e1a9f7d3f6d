package logging

import "log/slog"

// Common field names for consistent logging across the shippers.
const (
	FieldService = "service"
	FieldRunID   = "run_id"
	FieldFormat  = "format"
	FieldSince   = "since"
	FieldURL     = "url"
	FieldIndex   = "index"
	FieldBatch   = "batch"
	FieldBatches = "batches"
	FieldCount   = "count"
	FieldError   = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// RunID returns a slog attribute for the ingestion run ID.
func RunID(id string) slog.Attr {
	return slog.String(FieldRunID, id)
}

// Format returns a slog attribute for the feed format.
func Format(format string) slog.Attr {
	return slog.String(FieldFormat, format)
}

// Since returns a slog attribute for the fetch time window.
func Since(window string) slog.Attr {
	return slog.String(FieldSince, window)
}

// URL returns a slog attribute for a request URL.
func URL(url string) slog.Attr {
	return slog.String(FieldURL, url)
}

// Index returns a slog attribute for a search index name.
func Index(name string) slog.Attr {
	return slog.String(FieldIndex, name)
}

// Batch returns a slog attribute for a 1-based batch number.
func Batch(n int) slog.Attr {
	return slog.Int(FieldBatch, n)
}

// Batches returns a slog attribute for the total batch count.
func Batches(n int) slog.Attr {
	return slog.Int(FieldBatches, n)
}

// Count returns a slog attribute for a record count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
