package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/muddasani/JDBM3/pkg/primitives"
)

// shardFile is the handle a shard set manages. *os.File satisfies it;
// tests substitute instrumented implementations to observe seeks.
type shardFile interface {
	io.Reader
	io.Writer
	io.Seeker

	// Sync forces buffered writes to stable storage.
	Sync() error

	Close() error
}

func openShardFile(path primitives.Filepath) (shardFile, error) {
	file, err := os.OpenFile(path.String(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard file %s: %w", path, err)
	}
	return file, nil
}

// shardSet is the lazily-growing, index-addressable collection of
// open shard files backing one store. It is owned exclusively by the
// DiskStorage that created it.
type shardSet struct {
	base  primitives.Filepath
	files []shardFile // sparse at the tail; nil means not yet opened
	open  func(path primitives.Filepath) (shardFile, error)
}

func newShardSet(base primitives.Filepath) *shardSet {
	return &shardSet{base: base, open: openShardFile}
}

// resolve returns the shard file covering the given logical byte
// offset, opening or creating "<base>.<index>" on first use. A shard
// opened here stays open until closeAll; nothing closes it
// implicitly.
func (s *shardSet) resolve(offset int64) (shardFile, error) {
	index := int(offset / MaxShardSize)

	for i := len(s.files); i <= index; i++ {
		s.files = append(s.files, nil)
	}

	if s.files[index] == nil {
		file, err := s.open(s.base.Shard(index))
		if err != nil {
			return nil, err
		}
		s.files[index] = file
	}
	return s.files[index], nil
}

// syncAll flushes every open shard in index order. It stops at the
// first failing shard: shards after it are not flushed in this call.
func (s *shardSet) syncAll() error {
	for index, file := range s.files {
		if file == nil {
			continue
		}
		if err := file.Sync(); err != nil {
			return fmt.Errorf("failed to sync shard %d of %s: %w", index, s.base, err)
		}
	}
	return nil
}

// closeAll closes every open shard and discards the collection. All
// shards are closed even if one of them fails; the first error wins.
func (s *shardSet) closeAll() error {
	var firstErr error
	for index, file := range s.files {
		if file == nil {
			continue
		}
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close shard %d of %s: %w", index, s.base, err)
		}
	}
	s.files = nil
	return firstErr
}
