package store

import "sync"

// keyPool provides reusable byte slices for building database keys,
// keeping key construction off the allocator on hot read/write paths.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers every key shape in use: collection prefix,
		// owner ID, separator, and a zero-padded or nanoid suffix.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a
// pooled buffer. The slice is valid until releaseKey is called, and
// callers MUST release it:
//
//	key := buildKey(bookPrefix, suffix)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool. The slice must not be
// used afterward. Oversized buffers are dropped rather than pooled.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
