package storage

import "errors"

var (
	// ErrLockAcquisition is returned by NewDiskStorage when the
	// exclusive advisory lock on shard 0 cannot be taken, usually
	// because another instance already owns the base path. It is
	// raised only at construction and never retried.
	ErrLockAcquisition = errors.New("could not lock store files")

	// ErrInvalidBlockSize is returned when a write's payload length
	// is not exactly BlockSize. It is reported before any I/O is
	// attempted.
	ErrInvalidBlockSize = errors.New("block must be exactly BlockSize bytes")

	// ErrInvalidPageNumber is returned for negative page numbers,
	// which have no position in the logical address space.
	ErrInvalidPageNumber = errors.New("page number must be non-negative")

	// ErrStorageClosed is returned when a store is used after Close.
	ErrStorageClosed = errors.New("storage is closed")
)
