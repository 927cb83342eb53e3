package primitives

import "math"

// PageNumber identifies one fixed-size block within a store's logical
// address space. Valid page numbers are non-negative 64-bit integers;
// the logical byte offset of a page is its number multiplied by the
// store's block size.
type PageNumber int64

// NoPage is the value of a store's sequential-access cursor before any
// page has been touched. It sits far enough below zero that NoPage+1
// can never equal a valid page number, so the first access on a fresh
// store always positions the file explicitly.
const NoPage PageNumber = math.MinInt64

// IsValid reports whether the page number can resolve to a shard.
// Negative page numbers have no position in the address space.
func (p PageNumber) IsValid() bool {
	return p >= 0
}
