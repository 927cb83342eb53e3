package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// diskTransactionLog is the buffered append stream over "<base>.t".
type diskTransactionLog struct {
	file *os.File
	buf  *bufio.Writer
}

// Write appends bytes to the log buffer. Nothing reaches the OS until
// the buffer fills or Flush is called.
func (l *diskTransactionLog) Write(p []byte) (int, error) {
	return l.buf.Write(p)
}

// Flush drains the buffer and then fsyncs the log file. Draining
// alone is not a durability point; the sync is what makes the log
// entries survive a crash.
func (l *diskTransactionLog) Flush() error {
	if err := l.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush transaction log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync transaction log: %w", err)
	}
	return nil
}

// Close drains the buffer and closes the file. It does not sync.
func (l *diskTransactionLog) Close() error {
	if err := l.buf.Flush(); err != nil {
		l.file.Close()
		return fmt.Errorf("failed to flush transaction log: %w", err)
	}
	return l.file.Close()
}

// diskTransactionLogReader is the replay stream handed back by
// ReadTransactionLog, positioned just past the magic header.
type diskTransactionLogReader struct {
	*bufio.Reader
	file *os.File
}

func (r *diskTransactionLogReader) Close() error {
	return r.file.Close()
}

// OpenTransactionLog creates the transaction log file, truncating any
// previous one, and returns an append stream for it. The caller is
// expected to write the LogFileHeader magic before any entries.
func (d *DiskStorage) OpenTransactionLog() (TransactionLogWriter, error) {
	if d.closed {
		return nil, ErrStorageClosed
	}

	path := d.base.TransactionLog()
	file, err := os.Create(path.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction log %s: %w", path, err)
	}
	return &diskTransactionLog{file: file, buf: bufio.NewWriter(file)}, nil
}

// ReadTransactionLog opens the transaction log for replay.
//
// The log's status collapses to two outcomes. A valid log (present,
// non-empty, magic header intact) is returned positioned just past
// the header. Everything else is "nothing to recover", reported as
// (nil, nil): an absent log, an empty log (deleted on the way out,
// as if never created), or a log whose header is unreadable or wrong
// (deleted as abandoned, with only a warning logged).
func (d *DiskStorage) ReadTransactionLog() (io.ReadCloser, error) {
	if d.closed {
		return nil, ErrStorageClosed
	}

	path := d.base.TransactionLog()
	info, err := path.Stat()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat transaction log %s: %w", path, err)
	}

	if info.Size() == 0 {
		d.log.Debug("removing empty transaction log")
		if err := path.Remove(); err != nil {
			return nil, fmt.Errorf("failed to remove empty transaction log %s: %w", path, err)
		}
		return nil, nil
	}

	file, err := os.Open(path.String())
	if errors.Is(err, fs.ErrNotExist) {
		// Raced away since the stat above; nothing to recover.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction log %s: %w", path, err)
	}

	reader := &diskTransactionLogReader{Reader: bufio.NewReader(file), file: file}
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil || binary.BigEndian.Uint16(header) != LogFileHeader {
		reader.Close()
		d.log.Warn("discarding transaction log with bad magic header")
		if err := path.Remove(); err != nil {
			return nil, fmt.Errorf("failed to remove corrupt transaction log %s: %w", path, err)
		}
		return nil, nil
	}
	return reader, nil
}

// DeleteTransactionLog removes the transaction log file if present.
// It is idempotent: deleting an absent log succeeds.
func (d *DiskStorage) DeleteTransactionLog() error {
	if d.closed {
		return ErrStorageClosed
	}
	if err := d.base.TransactionLog().Remove(); err != nil {
		return fmt.Errorf("failed to delete transaction log: %w", err)
	}
	return nil
}
