// Package hashfn holds the block digest algorithms a signature can be built
// with. Every algorithm produces a fixed-size digest so records in a
// signature file can be addressed by block index.
package hashfn

import (
	"fmt"
	"hash"
	"hash/crc32"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	sha256 "github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"

	"github.com/bamsammich/blocksig/internal/fault"
)

// Default is the algorithm used when none is configured.
const Default = "blake3"

// Hasher digests one block at a time. A Hasher is owned by a single worker
// and is not safe for concurrent use.
type Hasher interface {
	Sum(block []byte) ([]byte, error)
}

// Algorithm describes a block digest function.
type Algorithm struct {
	New  func() Hasher
	Name string
	Size int // digest length in bytes
}

// FromHash adapts a hash.Hash constructor into an Algorithm.
func FromHash(name string, newHash func() hash.Hash) Algorithm {
	return Algorithm{
		Name: name,
		Size: newHash().Size(),
		New: func() Hasher {
			return &streamHasher{h: newHash()}
		},
	}
}

type streamHasher struct {
	h hash.Hash
}

func (s *streamHasher) Sum(block []byte) ([]byte, error) {
	s.h.Reset()
	if _, err := s.h.Write(block); err != nil {
		return nil, err
	}
	return s.h.Sum(nil), nil
}

var registry = map[string]Algorithm{}

func register(a Algorithm) {
	registry[a.Name] = a
}

func init() {
	register(FromHash("blake3", func() hash.Hash { return blake3.New() }))
	register(FromHash("sha256", sha256.New))
	register(FromHash("xxhash", func() hash.Hash { return xxhash.New() }))
	register(FromHash("xxh3", func() hash.Hash { return xxh3.New() }))
	register(FromHash("crc32", func() hash.Hash { return crc32.NewIEEE() }))
}

// Lookup returns the algorithm registered under name (case-insensitive).
func Lookup(name string) (Algorithm, error) {
	a, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Algorithm{}, fault.Configf("unknown hash %q (available: %s)",
			name, strings.Join(Names(), ", "))
	}
	return a, nil
}

// Names returns the registered algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a Algorithm) String() string {
	return fmt.Sprintf("%s (%d bytes)", a.Name, a.Size)
}
