// Package hostmem models host memory behind the raw side of a host channel.
package hostmem

import "sync"

// A Storage is a sparse, word-addressed backing store. Words that were never
// written read as zero.
type Storage struct {
	mu    sync.Mutex
	words map[uint64]uint64
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{words: make(map[uint64]uint64)}
}

// Read returns n words starting at addr.
func (s *Storage) Read(addr uint64, n int) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]uint64, n)
	for i := range data {
		data[i] = s.words[addr+uint64(i)]
	}

	return data
}

// Write stores the given words starting at addr.
func (s *Storage) Write(addr uint64, data []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range data {
		s.words[addr+uint64(i)] = w
	}
}
