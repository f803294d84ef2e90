// Package sorter implements the bounded move-ordering priority queue the
// search engine uses to visit candidate moves from most to least
// promising, as scored by position.Position.MoveScore.
package sorter

import "github.com/YKhan142008/c4-solver/internal/position"

type entry struct {
	move  uint64
	score int
}

// Sorter is a fixed-capacity priority queue of at most position.W moves,
// kept in non-decreasing score order by insertion sort. Add is stable
// with respect to insertion order among equal scores: an entry only
// shifts past strictly-greater predecessors, so of two equally-scored
// moves the one added later is popped first by Next.
type Sorter struct {
	entries [position.W]entry
	size    int
}

// Add inserts move with the given ordering score.
func (s *Sorter) Add(move uint64, score int) {
	pos := s.size
	s.size++
	for pos > 0 && s.entries[pos-1].score > score {
		s.entries[pos] = s.entries[pos-1]
		pos--
	}
	s.entries[pos] = entry{move: move, score: score}
}

// Next pops and returns the highest-scored remaining move, or 0 when the
// buffer is empty.
func (s *Sorter) Next() uint64 {
	if s.size == 0 {
		return 0
	}
	s.size--
	return s.entries[s.size].move
}

// Reset empties the buffer for reuse.
func (s *Sorter) Reset() {
	s.size = 0
}
