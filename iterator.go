package bitcask

// Iterator walks the live keys of a Store in unspecified order, per
// Keydir's iter contract (§4.4).
//
// Grounded on the teacher's iterator.go, adapted to read keys from Keydir
// instead of the multi-file Bitcask struct.
type Iterator struct {
	store *Store
	keys  []string
	index int
}

// Iterator returns an iterator over the Store's current live keys. The key
// set is captured at call time; keys written afterwards are not visited.
func (s *Store) Iterator() *Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, s.keydir.Len())
	s.keydir.Range(func(key string, _ Entry) bool {
		keys = append(keys, key)
		return true
	})

	return &Iterator{store: s, keys: keys, index: -1}
}

// Next advances the iterator to the next key-value pair, returning false
// once the key set is exhausted.
func (it *Iterator) Next() bool {
	it.index++
	return it.index < len(it.keys)
}

// Key returns the key of the current key-value pair.
func (it *Iterator) Key() string {
	return it.keys[it.index]
}

// Value returns the value of the current key-value pair.
func (it *Iterator) Value() ([]byte, error) {
	return it.store.Get(it.Key())
}
