package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/muddasani/JDBM3/pkg/logging"
	"github.com/muddasani/JDBM3/pkg/primitives"
)

// DiskStorage is the durable Storage implementation. It spreads the
// logical address space over shard files, keeps a sequential-access
// cursor so that scans do not re-seek between consecutive pages, and
// holds an exclusive advisory lock on shard 0 for its whole lifetime.
//
// A DiskStorage has a single logical owner; see the package
// documentation for the concurrency contract.
type DiskStorage struct {
	base   primitives.Filepath
	shards *shardSet
	lock   *flock.Flock
	log    *slog.Logger

	// lastPage is the seek-avoidance cursor: the page number of the
	// most recent read or write. An access to lastPage+1 continues
	// where the file cursor already is, so no explicit seek is
	// issued for it.
	lastPage primitives.PageNumber

	closed bool
}

// NewDiskStorage opens (creating if necessary) the store rooted at
// the given base path. The first shard is opened eagerly and an
// exclusive advisory lock is taken on it; if another instance holds
// the lock, construction fails with ErrLockAcquisition and no handle
// is returned.
func NewDiskStorage(base primitives.Filepath) (*DiskStorage, error) {
	if base.IsEmpty() {
		return nil, fmt.Errorf("base filepath cannot be empty")
	}

	// Make sure the first shard can be opened before anything else.
	shards := newShardSet(base)
	if _, err := shards.resolve(0); err != nil {
		return nil, err
	}

	lock := flock.New(base.Shard(0).String())
	locked, err := lock.TryLock()
	if err != nil {
		shards.closeAll()
		return nil, fmt.Errorf("%w: %s: %v", ErrLockAcquisition, base, err)
	}
	if !locked {
		shards.closeAll()
		return nil, fmt.Errorf("%w: %s is held by another instance", ErrLockAcquisition, base)
	}

	log := logging.WithStore(base.String())
	log.Debug("opened disk store")

	return &DiskStorage{
		base:     base,
		shards:   shards,
		lock:     lock,
		log:      log,
		lastPage: primitives.NoPage,
	}, nil
}

// Write stores a block under the given page number.
func (d *DiskStorage) Write(page primitives.PageNumber, data []byte) error {
	if d.closed {
		return ErrStorageClosed
	}
	if len(data) != BlockSize {
		return fmt.Errorf("%w: got %d", ErrInvalidBlockSize, len(data))
	}
	if !page.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPageNumber, page)
	}

	offset := int64(page) * BlockSize
	file, err := d.shards.resolve(offset)
	if err != nil {
		return err
	}

	if err := d.position(file, page, offset); err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write page %d: %w", page, err)
	}
	d.lastPage = page
	return nil
}

// Read returns the block stored under the given page number. If the
// read runs past the shard's physical end, the unfilled remainder of
// the block is taken from cleanBlock, so pages that were never
// written come back as zeros instead of an error.
func (d *DiskStorage) Read(page primitives.PageNumber) ([]byte, error) {
	if d.closed {
		return nil, ErrStorageClosed
	}
	if !page.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageNumber, page)
	}

	offset := int64(page) * BlockSize
	file, err := d.shards.resolve(offset)
	if err != nil {
		return nil, err
	}

	if err := d.position(file, page, offset); err != nil {
		return nil, err
	}

	buf := make([]byte, BlockSize)
	pos := 0
	for pos < BlockSize {
		n, err := file.Read(buf[pos:])
		pos += n
		if err == io.EOF {
			copy(buf[pos:], cleanBlock[pos:])
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", page, err)
		}
	}
	d.lastPage = page
	return buf, nil
}

// position seeks the shard file to the page's intra-shard offset
// unless the access directly continues the previous one, in which
// case the file cursor is already there. Sequential scans therefore
// seek once and then just stream.
func (d *DiskStorage) position(file shardFile, page primitives.PageNumber, offset int64) error {
	if d.lastPage+1 == page {
		return nil
	}
	if _, err := file.Seek(offset%MaxShardSize, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to page %d: %w", page, err)
	}
	return nil
}

// Sync forces every open shard's buffered writes to stable storage.
// If a shard fails to flush, shards after it in index order are not
// flushed in this call.
func (d *DiskStorage) Sync() error {
	if d.closed {
		return ErrStorageClosed
	}
	return d.shards.syncAll()
}

// Close releases every shard handle and the advisory lock. Nothing is
// flushed implicitly. Any further operation on the store, including a
// second Close, returns ErrStorageClosed.
func (d *DiskStorage) Close() error {
	if d.closed {
		return ErrStorageClosed
	}
	d.closed = true

	err := d.shards.closeAll()
	if uerr := d.lock.Unlock(); uerr != nil && err == nil {
		err = fmt.Errorf("failed to release store lock: %w", uerr)
	}
	d.log.Debug("closed disk store")
	return err
}

// IsReadonly reports whether the store rejects writes. This variant
// is always writable.
func (d *DiskStorage) IsReadonly() bool {
	return false
}

// DeleteAllFiles removes every shard file and the transaction log
// from disk, destroying the store's contents. The store should be
// closed first. Deleting files that were never created is not an
// error.
//
// Shards are created lazily and the sequence can be sparse (writing a
// page in shard 2 never creates "<base>.1"), so the shard files are
// found by scanning for the "<base>.<index>" pattern rather than by
// walking indexes until the first gap.
func (d *DiskStorage) DeleteAllFiles() error {
	prefix := d.base.String() + "."
	matches, err := filepath.Glob(prefix + "*")
	if err != nil {
		return fmt.Errorf("failed to list store files of %s: %w", d.base, err)
	}

	for _, match := range matches {
		if _, err := strconv.Atoi(strings.TrimPrefix(match, prefix)); err != nil {
			continue // not a shard file
		}
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to delete shard file %s: %w", match, err)
		}
	}
	if err := d.base.TransactionLog().Remove(); err != nil {
		return fmt.Errorf("failed to delete transaction log: %w", err)
	}
	return nil
}
