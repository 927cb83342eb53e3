package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/muddasani/JDBM3/pkg/logging"
	"github.com/muddasani/JDBM3/pkg/primitives"
)

// MemoryStorage is a volatile Storage implementation keeping pages
// and the transaction log in memory. It honors the same contracts as
// DiskStorage — block-size validation, zero blocks for never-written
// pages, the magic-header state machine on recovery — which makes it
// the natural backend for tests and throwaway databases. Nothing
// survives the process.
type MemoryStorage struct {
	pages  map[primitives.PageNumber][]byte
	log    []byte
	closed bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{pages: make(map[primitives.PageNumber][]byte)}
}

// Write stores a copy of the block under the given page number.
func (m *MemoryStorage) Write(page primitives.PageNumber, data []byte) error {
	if m.closed {
		return ErrStorageClosed
	}
	if len(data) != BlockSize {
		return fmt.Errorf("%w: got %d", ErrInvalidBlockSize, len(data))
	}
	if !page.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPageNumber, page)
	}

	block := make([]byte, BlockSize)
	copy(block, data)
	m.pages[page] = block
	return nil
}

// Read returns a copy of the block stored under the given page
// number, or a zero block if the page was never written.
func (m *MemoryStorage) Read(page primitives.PageNumber) ([]byte, error) {
	if m.closed {
		return nil, ErrStorageClosed
	}
	if !page.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageNumber, page)
	}

	buf := make([]byte, BlockSize)
	if block, ok := m.pages[page]; ok {
		copy(buf, block)
	} else {
		copy(buf, cleanBlock)
	}
	return buf, nil
}

// Sync is a no-op: there is no stable storage behind this store.
func (m *MemoryStorage) Sync() error {
	if m.closed {
		return ErrStorageClosed
	}
	return nil
}

// Close discards all pages and the transaction log.
func (m *MemoryStorage) Close() error {
	if m.closed {
		return ErrStorageClosed
	}
	m.closed = true
	m.pages = nil
	m.log = nil
	return nil
}

// memoryTransactionLog appends into its owning store's log buffer.
type memoryTransactionLog struct {
	store *MemoryStorage
}

func (l *memoryTransactionLog) Write(p []byte) (int, error) {
	if l.store.closed {
		return 0, ErrStorageClosed
	}
	l.store.log = append(l.store.log, p...)
	return len(p), nil
}

// Flush is a no-op: writes land in the buffer immediately and there
// is nothing more durable to push them to.
func (l *memoryTransactionLog) Flush() error {
	if l.store.closed {
		return ErrStorageClosed
	}
	return nil
}

func (l *memoryTransactionLog) Close() error {
	return nil
}

// OpenTransactionLog starts a fresh in-memory transaction log,
// discarding any previous one.
func (m *MemoryStorage) OpenTransactionLog() (TransactionLogWriter, error) {
	if m.closed {
		return nil, ErrStorageClosed
	}
	m.log = nil
	return &memoryTransactionLog{store: m}, nil
}

// ReadTransactionLog replays the in-memory transaction log under the
// same state machine as the disk variant: an absent or empty log, or
// one whose magic header is wrong, is discarded and reported as
// (nil, nil).
func (m *MemoryStorage) ReadTransactionLog() (io.ReadCloser, error) {
	if m.closed {
		return nil, ErrStorageClosed
	}
	if len(m.log) == 0 {
		m.log = nil
		return nil, nil
	}
	if len(m.log) < 2 || binary.BigEndian.Uint16(m.log[:2]) != LogFileHeader {
		logging.Warn("discarding in-memory transaction log with bad magic header")
		m.log = nil
		return nil, nil
	}
	return io.NopCloser(bytes.NewReader(m.log[2:])), nil
}

// DeleteTransactionLog discards the in-memory transaction log.
func (m *MemoryStorage) DeleteTransactionLog() error {
	if m.closed {
		return ErrStorageClosed
	}
	m.log = nil
	return nil
}

// IsReadonly reports whether the store rejects writes. This variant
// is always writable.
func (m *MemoryStorage) IsReadonly() bool {
	return false
}
