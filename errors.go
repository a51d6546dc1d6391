package bitcask

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by Get when the key has no live entry.
	ErrKeyNotFound = errors.New("bitcask: key not found")

	// ErrKeyTooLarge is returned by Put when the key exceeds the 32-bit
	// key_size field.
	ErrKeyTooLarge = errors.New("bitcask: key too large")

	// ErrMalformedHint is returned by the hint reader when the hint file is
	// truncated mid-record or holds a negative value size or offset. Hint
	// offsets beyond the log are caught by recover, not by the reader.
	ErrMalformedHint = errors.New("bitcask: malformed hint file")

	// ErrOutOfBounds is returned by MappedLog accessors when an operation
	// would read or write past the current mapping.
	ErrOutOfBounds = errors.New("bitcask: access out of bounds")
)

// CorruptLogError reports a CRC mismatch found while scanning the log.
// It is fatal to recovery: the caller decides whether to truncate the log
// at Offset and continue.
type CorruptLogError struct {
	Offset int64
}

func (e *CorruptLogError) Error() string {
	return fmt.Sprintf("bitcask: corrupt log record at offset %d", e.Offset)
}
