package primitives

import (
	"fmt"
	"os"
)

// transactionLogExt is the suffix appended to a store's base path to
// name its transaction log file.
const transactionLogExt = ".t"

// Filepath is a type-safe wrapper around the base path of a store.
// All files belonging to one store derive their names from the base
// path through the methods below, so the on-disk naming scheme lives
// in exactly one place:
//
//   - shard files:      "<base>.<index>" (index starting at 0)
//   - transaction log:  "<base>.t"
//
// Example usage:
//
//	base := primitives.Filepath("/data/accounts")
//	first := base.Shard(0)          // "/data/accounts.0"
//	logFile := base.TransactionLog() // "/data/accounts.t"
type Filepath string

// Shard returns the path of the shard file with the given index.
func (f Filepath) Shard(index int) Filepath {
	return Filepath(fmt.Sprintf("%s.%d", string(f), index))
}

// TransactionLog returns the path of the store's transaction log file.
func (f Filepath) TransactionLog() Filepath {
	return Filepath(string(f) + transactionLogExt)
}

// String converts the Filepath to a standard string.
func (f Filepath) String() string {
	return string(f)
}

// IsEmpty checks whether the filepath is an empty string.
// This is useful for validation before file operations.
func (f Filepath) IsEmpty() bool {
	return string(f) == ""
}

// Exists checks whether the file exists on the filesystem.
func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

// Remove deletes the file from the filesystem.
// This operation is idempotent - it succeeds if the file doesn't exist.
func (f Filepath) Remove() error {
	if !f.Exists() {
		return nil // Idempotent operation
	}
	return os.Remove(string(f))
}

// Stat returns file information from the filesystem.
func (f Filepath) Stat() (os.FileInfo, error) {
	return os.Stat(string(f))
}
