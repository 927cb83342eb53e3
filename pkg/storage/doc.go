// Package storage is the fixed-size-block storage layer at the bottom
// of the database: it maps a single unbounded logical page-address
// space onto a set of bounded-size files on disk and manages the
// lifecycle of the on-disk transaction log.
//
// # Address space and shards
//
// Data is organised into fixed-size [BlockSize] pages that are read and
// written as atomic units. A page's logical byte offset is its page
// number times BlockSize. Because a single OS file is kept below
// [MaxShardSize] bytes, the logical address space is split across
// shard files named "<base>.<index>"; shards are created lazily the
// first time an offset inside them is touched and are never merged or
// renumbered.
//
// # Implementations
//
//   - [DiskStorage]   – durable store over shard files, with an
//     advisory lock on shard 0 so that only one instance can own a
//     base path at a time.
//   - [MemoryStorage] – volatile store keeping pages in memory, for
//     tests and scratch databases.
//
// # Transaction log
//
// The transaction log "<base>.t" has a lifecycle independent of the
// shards: the transaction layer appends entries through
// [Storage.OpenTransactionLog], makes them durable with an explicit
// Flush, and replays them after a crash through
// [Storage.ReadTransactionLog]. A log that is absent, empty, or fails
// its magic-header check reads back as "nothing to recover".
//
// # Ownership
//
// A Storage value has a single logical owner: there is no internal
// locking, and callers needing concurrent access must serialize
// externally. Every operation performs direct blocking I/O.
package storage
