package storage

import (
	"io"

	"github.com/muddasani/JDBM3/pkg/primitives"
)

// Storage is the raw block store the record manager and transaction
// layer are built on. It exposes page-granular reads and writes over
// an unbounded logical address space plus the lifecycle of the
// store's transaction log.
type Storage interface {
	// Write stores a block under the given page number. The payload
	// must be exactly BlockSize bytes, otherwise ErrInvalidBlockSize
	// is returned before any I/O happens.
	Write(page primitives.PageNumber, data []byte) error

	// Read returns the BlockSize bytes stored under the given page
	// number. A page that was never written reads back as all zero
	// bytes. The returned slice is a snapshot owned by the caller.
	Read(page primitives.PageNumber) ([]byte, error)

	// Sync forces all buffered page writes to stable storage. It is
	// the only operation with an end-to-end durability guarantee and
	// must be invoked by the owning transaction layer at commit
	// boundaries.
	Sync() error

	// Close releases all resources held by the store. It does not
	// flush; call Sync first if durability is required. After Close
	// every operation returns ErrStorageClosed.
	Close() error

	// OpenTransactionLog creates (or truncates) the store's
	// transaction log and returns an append stream for it.
	OpenTransactionLog() (TransactionLogWriter, error)

	// ReadTransactionLog opens the transaction log for replay,
	// positioned just past the magic header. It returns (nil, nil)
	// when there is nothing to recover: the log is absent, empty, or
	// failed its header check (the latter two are deleted on the
	// way out).
	ReadTransactionLog() (io.ReadCloser, error)

	// DeleteTransactionLog removes the transaction log if present.
	// Deleting an absent log is not an error.
	DeleteTransactionLog() error

	// IsReadonly reports whether the store rejects writes.
	IsReadonly() bool
}

// TransactionLogWriter is the append stream for a store's transaction
// log. Writes are buffered; an explicit Flush is a durability point,
// not just a buffer drain.
type TransactionLogWriter interface {
	io.Writer

	// Flush drains buffered bytes to the OS and forces them to
	// stable storage. After a successful Flush everything written so
	// far survives a crash.
	Flush() error

	io.Closer
}

var (
	_ Storage = (*DiskStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)
