package rowmutation

// durability.go defines the write-ahead-log guarantee requested by a mutation.

import "fmt"

// Durability selects how the apply layer treats the write-ahead log for a
// mutation. The zero value defers to the table's configured default.
type Durability uint8

const (
	// UseDefault uses the table's default durability.
	UseDefault Durability = iota
	// SkipWAL does not write the mutation to the WAL.
	SkipWAL
	// AsyncWAL writes the WAL asynchronously.
	AsyncWAL
	// SyncWAL writes the WAL synchronously.
	SyncWAL
	// FsyncWAL writes the WAL synchronously and forces it to disk.
	FsyncWAL
)

// String returns the name of the durability level.
func (d Durability) String() string {
	switch d {
	case UseDefault:
		return "USE_DEFAULT"
	case SkipWAL:
		return "SKIP_WAL"
	case AsyncWAL:
		return "ASYNC_WAL"
	case SyncWAL:
		return "SYNC_WAL"
	case FsyncWAL:
		return "FSYNC_WAL"
	default:
		return fmt.Sprintf("Durability(%d)", uint8(d))
	}
}

// Valid reports whether d is one of the defined levels.
func (d Durability) Valid() bool {
	return d <= FsyncWAL
}

// WritesWAL reports whether the mutation is written to the WAL at all.
func (d Durability) WritesWAL() bool {
	return d != SkipWAL
}
