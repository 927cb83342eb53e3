package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muddasani/JDBM3/pkg/primitives"
)

// pagesPerShard is the number of whole pages one shard file holds;
// page pagesPerShard is the first page of shard 1.
const pagesPerShard = primitives.PageNumber(MaxShardSize / BlockSize)

func newTestDisk(t *testing.T) (*DiskStorage, primitives.Filepath) {
	t.Helper()
	base := primitives.Filepath(filepath.Join(t.TempDir(), "store"))

	store, err := NewDiskStorage(base)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !store.closed {
			store.Close()
		}
	})
	return store, base
}

// filledBlock returns a BlockSize payload filled with the given byte.
func filledBlock(fill byte) []byte {
	block := make([]byte, BlockSize)
	for i := range block {
		block[i] = fill
	}
	return block
}

func TestDiskStorage_WriteReadRoundtrip(t *testing.T) {
	store, _ := newTestDisk(t)

	t.Run("Written block reads back identical", func(t *testing.T) {
		block := filledBlock(0xAB)
		require.NoError(t, store.Write(3, block))

		got, err := store.Read(3)
		require.NoError(t, err)
		assert.Equal(t, block, got)
	})

	t.Run("Overwrite replaces previous contents", func(t *testing.T) {
		require.NoError(t, store.Write(3, filledBlock(0x01)))
		require.NoError(t, store.Write(3, filledBlock(0x02)))

		got, err := store.Read(3)
		require.NoError(t, err)
		assert.Equal(t, filledBlock(0x02), got)
	})

	t.Run("Returned block is a snapshot", func(t *testing.T) {
		require.NoError(t, store.Write(7, filledBlock(0x55)))

		first, err := store.Read(7)
		require.NoError(t, err)
		first[0] = 0xFF

		second, err := store.Read(7)
		require.NoError(t, err)
		assert.Equal(t, byte(0x55), second[0])
	})
}

func TestDiskStorage_ReadNeverWrittenPage(t *testing.T) {
	store, _ := newTestDisk(t)

	t.Run("Fresh store reads zero block", func(t *testing.T) {
		got, err := store.Read(0)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, BlockSize), got)
	})

	t.Run("Page far beyond highest written reads zero block", func(t *testing.T) {
		require.NoError(t, store.Write(0, filledBlock(0x11)))

		got, err := store.Read(500)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, BlockSize), got)
	})
}

func TestDiskStorage_WriteInvalidBlockSize(t *testing.T) {
	store, base := newTestDisk(t)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"Empty payload", []byte{}},
		{"Short payload", make([]byte, BlockSize-1)},
		{"Long payload", make([]byte, BlockSize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Write(0, tt.payload)
			require.ErrorIs(t, err, ErrInvalidBlockSize)
		})
	}

	t.Run("No I/O is performed", func(t *testing.T) {
		info, err := base.Shard(0).Stat()
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})
}

func TestDiskStorage_NegativePageNumber(t *testing.T) {
	store, _ := newTestDisk(t)

	err := store.Write(-1, filledBlock(0x00))
	require.ErrorIs(t, err, ErrInvalidPageNumber)

	_, err = store.Read(-1)
	require.ErrorIs(t, err, ErrInvalidPageNumber)
}

func TestDiskStorage_ShardBoundary(t *testing.T) {
	store, base := newTestDisk(t)

	inShard0 := filledBlock(0xA0)
	inShard1 := filledBlock(0xB1)
	require.NoError(t, store.Write(0, inShard0))
	require.NoError(t, store.Write(pagesPerShard, inShard1))
	require.NoError(t, store.Write(pagesPerShard+1, filledBlock(0xB2)))

	t.Run("Second shard file is created on demand", func(t *testing.T) {
		assert.True(t, base.Shard(1).Exists())
	})

	t.Run("Shard 1 starts at the shard boundary, not one huge file", func(t *testing.T) {
		info, err := base.Shard(1).Stat()
		require.NoError(t, err)
		assert.Equal(t, int64(2*BlockSize), info.Size())

		info0, err := base.Shard(0).Stat()
		require.NoError(t, err)
		assert.Equal(t, int64(BlockSize), info0.Size())
	})

	t.Run("Writes to different shards do not corrupt each other", func(t *testing.T) {
		got0, err := store.Read(0)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(inShard0, got0))

		got1, err := store.Read(pagesPerShard)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(inShard1, got1))
	})
}

func TestDiskStorage_SyncAndClose(t *testing.T) {
	t.Run("Sync flushes without error", func(t *testing.T) {
		store, _ := newTestDisk(t)
		require.NoError(t, store.Write(0, filledBlock(0x33)))
		assert.NoError(t, store.Sync())
	})

	t.Run("Synced data is visible to a later instance", func(t *testing.T) {
		store, base := newTestDisk(t)
		block := filledBlock(0x44)
		require.NoError(t, store.Write(9, block))
		require.NoError(t, store.Sync())
		require.NoError(t, store.Close())

		reopened, err := NewDiskStorage(base)
		require.NoError(t, err)
		defer reopened.Close()

		got, err := reopened.Read(9)
		require.NoError(t, err)
		assert.Equal(t, block, got)
	})

	t.Run("Operations after Close fail", func(t *testing.T) {
		store, _ := newTestDisk(t)
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Write(0, filledBlock(0x00)), ErrStorageClosed)
		_, err := store.Read(0)
		assert.ErrorIs(t, err, ErrStorageClosed)
		assert.ErrorIs(t, store.Sync(), ErrStorageClosed)
		assert.ErrorIs(t, store.Close(), ErrStorageClosed)
		_, err = store.OpenTransactionLog()
		assert.ErrorIs(t, err, ErrStorageClosed)
	})
}

func TestDiskStorage_LockGuard(t *testing.T) {
	t.Run("Second instance on the same base fails", func(t *testing.T) {
		_, base := newTestDisk(t)

		second, err := NewDiskStorage(base)
		require.ErrorIs(t, err, ErrLockAcquisition)
		assert.Nil(t, second)
	})

	t.Run("Close releases the lock", func(t *testing.T) {
		store, base := newTestDisk(t)
		require.NoError(t, store.Close())

		reopened, err := NewDiskStorage(base)
		require.NoError(t, err)
		assert.NoError(t, reopened.Close())
	})

	t.Run("Different bases do not contend", func(t *testing.T) {
		_, _ = newTestDisk(t)
		other, err := NewDiskStorage(primitives.Filepath(filepath.Join(t.TempDir(), "other")))
		require.NoError(t, err)
		assert.NoError(t, other.Close())
	})
}

func TestDiskStorage_IsReadonly(t *testing.T) {
	store, _ := newTestDisk(t)
	assert.False(t, store.IsReadonly())
}

func TestDiskStorage_DeleteAllFiles(t *testing.T) {
	t.Run("Removes shards and transaction log", func(t *testing.T) {
		store, base := newTestDisk(t)
		require.NoError(t, store.Write(0, filledBlock(0x77)))
		require.NoError(t, store.Write(pagesPerShard, filledBlock(0x78)))

		writer, err := store.OpenTransactionLog()
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		require.NoError(t, store.Close())
		require.NoError(t, store.DeleteAllFiles())

		assert.False(t, base.Shard(0).Exists())
		assert.False(t, base.Shard(1).Exists())
		assert.False(t, base.TransactionLog().Exists())

		// A second pass finds nothing and still succeeds.
		assert.NoError(t, store.DeleteAllFiles())
	})

	t.Run("Removes shards past a gap in the sequence", func(t *testing.T) {
		store, base := newTestDisk(t)
		require.NoError(t, store.Write(2*pagesPerShard, filledBlock(0x79)))
		require.True(t, base.Shard(2).Exists())
		require.False(t, base.Shard(1).Exists())

		require.NoError(t, store.Close())
		require.NoError(t, store.DeleteAllFiles())

		assert.False(t, base.Shard(0).Exists())
		assert.False(t, base.Shard(2).Exists())
	})

	t.Run("Leaves unrelated neighbours alone", func(t *testing.T) {
		store, base := newTestDisk(t)
		require.NoError(t, store.Write(0, filledBlock(0x7A)))

		neighbour := primitives.Filepath(base.String() + ".bak")
		require.NoError(t, os.WriteFile(neighbour.String(), []byte("keep"), 0o644))

		require.NoError(t, store.Close())
		require.NoError(t, store.DeleteAllFiles())

		assert.False(t, base.Shard(0).Exists())
		assert.True(t, neighbour.Exists())
	})
}
