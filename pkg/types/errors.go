package types

import "errors"

// Domain errors shared across engine components. No error in this subsystem
// aborts an overall build; failures are always file-local.
var (
	// ErrFileRead indicates a file could not be read (permissions or IO).
	// The file is skipped and the scan continues.
	ErrFileRead = errors.New("file read failed")

	// ErrParse indicates a file could not be decoded or scanned for
	// symbols. The file is still indexed as a single whole-file chunk.
	ErrParse = errors.New("parse failed")

	// ErrPersistence indicates the on-disk index is corrupt or missing.
	// The engine falls back to an empty index and schedules a rebuild.
	ErrPersistence = errors.New("persisted index unusable")

	// ErrCancelled indicates an indexing run was cancelled. Documents
	// processed before cancellation remain valid and queryable.
	ErrCancelled = errors.New("indexing cancelled")

	// ErrBusy is returned when a rebuild is requested while another
	// indexing run is in progress.
	ErrBusy = errors.New("indexing already in progress")

	// ErrNotFound is returned when a requested document, symbol or chunk
	// does not exist in the committed index.
	ErrNotFound = errors.New("not found")
)
