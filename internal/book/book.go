// Package book implements the read-only opening book: a precomputed
// mapping from the symmetric canonical key of every reachable position
// at a fixed small ply depth to an upper-bound score byte compatible
// with the transposition table's encoding.
package book

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/ttable"
)

// formatMarker identifies this package's header layout; Load rejects
// any file that does not start with it.
const formatMarker uint32 = 0x34424b43 // "CKB4" little-endian

// header is the binary file header, little-endian, one field per word.
type header struct {
	Width          uint32
	Height         uint32
	TableLogSize   uint32
	KeyByteWidth   uint32
	ValueByteWidth uint32
	Depth          uint32
	FormatMarker   uint32
}

// Book is an immutable key-to-score lookup loaded from a binary file. A
// nil *Book is valid and behaves as an always-miss book, so callers
// never need a separate "book present" check.
type Book struct {
	depth  int
	keys   []uint32
	values []uint8
}

// Depth reports the ply count at which this book has entries. Queries
// at any other ply are meaningless and Get is not called for them.
func (b *Book) Depth() int {
	if b == nil {
		return -1
	}
	return b.depth
}

// Get looks up the canonical key directly, bypassing CanonicalKey. It
// exists for tests and callers that already have a key in hand; Engine
// callers should use Lookup instead.
func (b *Book) Get(key uint64) (uint8, bool) {
	if b == nil || len(b.values) == 0 {
		return 0, false
	}
	i := key % uint64(len(b.values))
	if b.keys[i] == uint32(key) {
		return b.values[i], true
	}
	return 0, false
}

// Lookup consults the book for pos, returning (score, true) only when
// pos.Moves() equals the book's depth and its canonical key hits.
func (b *Book) Lookup(pos *position.Position) (uint8, bool) {
	if b == nil || pos.Moves() != b.depth {
		return 0, false
	}
	return b.Get(CanonicalKey(pos))
}

// CanonicalKey computes the base-3 "ternary key" of pos: walking every
// column bottom to top, it appends digit 1 for a stone belonging to the
// side to move, 2 for the opponent's, and a trailing 0 once the column
// is exhausted. This is computed in both left-to-right and right-to-
// left column order; the canonical form is the smaller of the two,
// divided by 3 to drop the final, redundant trailing zero. Taking the
// smaller of the two collapses horizontally mirrored positions — which
// are always game-theoretically equivalent — onto the same key.
func CanonicalKey(pos *position.Position) uint64 {
	forward := ternaryKey(pos, false)
	reverse := ternaryKey(pos, true)
	key := forward
	if reverse < key {
		key = reverse
	}
	return key / 3
}

func ternaryKey(pos *position.Position, reversed bool) uint64 {
	var key uint64
	for i := 0; i < position.W; i++ {
		col := i
		if reversed {
			col = position.W - 1 - i
		}
		key = appendColumn(key, pos, col)
	}
	return key
}

func appendColumn(key uint64, pos *position.Position, col int) uint64 {
	base := uint64(col * (position.H + 1))
	for row := 0; row < position.H; row++ {
		bit := uint64(1) << (base + uint64(row))
		if pos.Mask&bit == 0 {
			break
		}
		key *= 3
		if pos.Board&bit != 0 {
			key++
		} else {
			key += 2
		}
	}
	key *= 3
	return key
}

// Load reads a book in the binary format described by header: a fixed
// header followed by two little-endian parallel arrays (partial keys,
// then values), each of length equal to the transposition table's
// nextPrime(2^TableLogSize) entry count. It is a soft-failure API: a
// read, header, or length mismatch returns a descriptive error and no
// partially-loaded Book, so callers can log and fall back to book ==
// nil without special-casing a half-built table.
func Load(r io.Reader) (*Book, error) {
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("book: read header: %w", err)
	}
	if hdr.FormatMarker != formatMarker {
		return nil, fmt.Errorf("book: unrecognized format marker %#x", hdr.FormatMarker)
	}
	if hdr.Width != uint32(position.W) || hdr.Height != uint32(position.H) {
		return nil, fmt.Errorf("book: board size mismatch: got %dx%d, want %dx%d",
			hdr.Width, hdr.Height, position.W, position.H)
	}
	if hdr.KeyByteWidth != 4 || hdr.ValueByteWidth != 1 {
		return nil, fmt.Errorf("book: unsupported key/value byte widths %d/%d",
			hdr.KeyByteWidth, hdr.ValueByteWidth)
	}

	size := ttable.NextPrime(uint64(1) << hdr.TableLogSize)

	keys := make([]uint32, size)
	if err := binary.Read(r, binary.LittleEndian, keys); err != nil {
		return nil, fmt.Errorf("book: read keys: %w", err)
	}
	values := make([]uint8, size)
	if _, err := io.ReadFull(r, values); err != nil {
		return nil, fmt.Errorf("book: read values: %w", err)
	}

	return &Book{depth: int(hdr.Depth), keys: keys, values: values}, nil
}
