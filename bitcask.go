package bitcask

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Store is the façade over the Mapped Log, Record Codec, Keydir, Hint File
// and LRU Cache: Open/Put/Get/Delete/recover/Snapshot/Close.
//
// Grounded on the teacher's Bitcask struct and its Open/Put/Get/Delete/
// Close methods in bitcask.go, with multi-file rotation and the periodic
// merge goroutine removed per spec's Non-goals (see DESIGN.md).
type Store struct {
	mu sync.RWMutex

	log    *MappedLog
	keydir *Keydir
	cache  *lruCache

	offset       int64
	growthFactor int64
	sync         bool

	logger *slog.Logger
}

// Open opens or creates the log file at path and recovers its keydir.
func Open(path string, opts ...Option) (*Store, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.GrowthFactor < 2 {
		options.GrowthFactor = 2
	}

	log, err := openMappedLog(path, options.InitialLength)
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:          log,
		keydir:       newKeydir(),
		cache:        newLRUCache(options.CacheSize),
		growthFactor: options.GrowthFactor,
		sync:         options.Sync,
		logger:       slog.Default().With("log", path),
	}

	if err := s.recover(); err != nil {
		log.close()
		return nil, err
	}

	return s, nil
}

// recover restores the keydir and append offset from a hint file, if one
// exists, then absorbs any log records written after the hint snapshot.
// A malformed hint file is logged and ignored in favour of a full scan
// from offset 0.
func (s *Store) recover() error {
	hp := hintPath(s.log.filePath())
	result, err := readHintFile(hp)
	if err != nil {
		if !errors.Is(err, ErrMalformedHint) {
			return err
		}
		s.logger.Warn("ignoring malformed hint file, falling back to full scan", "path", hp, "err", err)
		result = nil
	}

	startOffset := int64(0)
	if result != nil && result.maxOffset <= s.log.length64() {
		for key, e := range result.entries {
			s.keydir.Put(key, e)
		}
		startOffset = result.maxOffset
	} else if result != nil {
		s.logger.Warn("hint file references offsets beyond the log, falling back to full scan", "path", hp)
	}

	newOffset, err := scanLog(s.log, startOffset, s.keydir)
	if err != nil {
		var corrupt *CorruptLogError
		if errors.As(err, &corrupt) {
			s.logger.Error("corrupt log record found during recovery", "offset", corrupt.Offset)
		}
		return err
	}

	s.offset = newOffset
	return nil
}

// Put appends a record for key/value and makes it visible to subsequent
// Get calls. An empty value is legal but is indistinguishable on recovery
// from a tombstone: direct callers writing zero-length values effectively
// delete the key.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(key, value)
}

func (s *Store) put(key string, value []byte) error {
	if uint64(len(key)) > 0xFFFFFFFF {
		return ErrKeyTooLarge
	}

	ts := nowMs()
	keyBytes := []byte(key)
	header := recordHeaderBytes(ts, uint32(len(keyBytes)), int64(len(value)))
	crc := recordCRC(header, keyBytes, value)

	total := recordSize(len(keyBytes), int64(len(value)))
	if err := s.growIfNeeded(total); err != nil {
		return err
	}

	offset := s.offset
	if err := s.log.putU64(offset, crc); err != nil {
		return err
	}
	if err := s.log.putBytes(offset+crcFieldSize, header); err != nil {
		return err
	}
	if err := s.log.putBytes(offset+crcFieldSize+recordHeaderSize, keyBytes); err != nil {
		return err
	}
	valueOffset := offset + crcFieldSize + recordHeaderSize + int64(len(keyBytes))
	if err := s.log.putBytes(valueOffset, value); err != nil {
		return err
	}

	if s.sync {
		if err := s.log.sync(); err != nil {
			return err
		}
	}

	if len(value) == 0 {
		s.keydir.Delete(key)
		s.cache.delete(key)
	} else {
		s.keydir.Put(key, Entry{Timestamp: ts, ValueSize: int64(len(value)), ValueOffset: valueOffset})
		s.cache.put(key, value)
	}
	s.offset = offset + total

	return nil
}

// Get returns the current value for key, or ErrKeyNotFound if the key is
// absent or tombstoned.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *Store) get(key string) ([]byte, error) {
	if v, ok := s.cache.get(key); ok {
		return v, nil
	}

	e, ok := s.keydir.Get(key)
	if !ok || e.ValueSize == 0 {
		return nil, ErrKeyNotFound
	}

	value, err := s.log.getBytes(e.ValueOffset, e.ValueSize)
	if err != nil {
		return nil, fmt.Errorf("bitcask: read value for %q: %w", key, err)
	}

	s.cache.put(key, value)
	return value, nil
}

// Delete appends a tombstone record for key and removes it from the
// keydir and cache. Deleting an already-absent key still appends a
// tombstone and succeeds, idempotently.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(key, []byte{})
}

// Snapshot writes the current keydir to the hint file.
func (s *Store) Snapshot() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return writeHintFile(hintPath(s.log.filePath()), s.keydir)
}

// BatchPut inserts multiple key-value pairs, stopping at the first error.
func (s *Store) BatchPut(pairs map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range pairs {
		if err := s.put(key, value); err != nil {
			return fmt.Errorf("bitcask: put %q: %w", key, err)
		}
	}
	return nil
}

// BatchGet retrieves multiple key-value pairs, omitting keys that are
// absent or tombstoned.
func (s *Store) BatchGet(keys []string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, err := s.get(key)
		if err == nil {
			result[key] = value
		} else if !errors.Is(err, ErrKeyNotFound) {
			return nil, fmt.Errorf("bitcask: get %q: %w", key, err)
		}
	}
	return result, nil
}

// Close flushes the mapping, writes a final hint file, and releases the
// mapping.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.log.sync(); err != nil {
		return err
	}
	if err := writeHintFile(hintPath(s.log.filePath()), s.keydir); err != nil {
		return err
	}
	return s.log.close()
}

// growIfNeeded grows the mapping by growthFactor, repeatedly, until it has
// at least n free bytes past the current append offset.
func (s *Store) growIfNeeded(n int64) error {
	for s.offset+n > s.log.length64() {
		newLength := s.log.length64() * s.growthFactor
		if newLength <= s.log.length64() {
			newLength = s.log.length64() + n
		}
		s.logger.Debug("growing mapped log", "from", s.log.length64(), "to", newLength)
		if err := s.log.remap(newLength); err != nil {
			return err
		}
	}
	return nil
}

// lastMs is the most recent value nowMs returned.
var lastMs atomic.Int64

// nowMs is a monotonic wall-clock millisecond reading. Equal timestamps
// between writes of the same key are permitted and resolved by log order.
func nowMs() int64 {
	for {
		now := time.Now().UnixMilli()
		last := lastMs.Load()
		if now < last {
			now = last
		}
		if lastMs.CompareAndSwap(last, now) {
			return now
		}
	}
}
