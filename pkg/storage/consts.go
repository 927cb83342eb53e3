package storage

const (
	// BlockSize is the size of every page in bytes. It is an on-disk
	// format constant: a store written with one block size cannot be
	// opened with another.
	BlockSize = 4096

	// shardSizeLimit caps the size of a single shard file before
	// rounding down to a whole number of blocks.
	shardSizeLimit = 1_000_000_000

	// MaxShardSize is the capacity of one shard file: the largest
	// multiple of BlockSize not exceeding shardSizeLimit. Every
	// shard's size is a multiple of BlockSize.
	MaxShardSize = shardSizeLimit - shardSizeLimit%BlockSize

	// LogFileHeader is the magic stored big-endian in the first two
	// bytes of a transaction log file. It is written once by the log
	// writer before any entries and validated on every recovery read;
	// a log whose header does not match is treated as abandoned.
	LogFileHeader uint16 = 0x6A64
)

// cleanBlock is the canonical never-written page: BlockSize zero
// bytes. Reads that run past a shard's physical end copy their
// unfilled remainder from it, so higher layers see "never written"
// and "written as zero" as the same thing. Never write into it.
var cleanBlock = make([]byte, BlockSize)
