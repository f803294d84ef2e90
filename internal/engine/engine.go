// Package engine implements the negamax search with alpha-beta pruning,
// iterative null-window root narrowing, transposition-table caching and
// opening-book short-circuiting that together compute the game-theoretic
// score of a Connect Four position.
package engine

import (
	"github.com/YKhan142008/c4-solver/internal/book"
	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/sorter"
	"github.com/YKhan142008/c4-solver/internal/ttable"
)

// columnOrder is the static column exploration order: centre first,
// then alternating outward (centre-1, centre+1, centre-2, centre+2, ...).
var columnOrder = buildColumnOrder()

func buildColumnOrder() [position.W]int {
	var order [position.W]int
	for i := 0; i < position.W; i++ {
		order[i] = position.Centre + (1-2*(i%2))*((i+1)/2)
	}
	return order
}

// boundSplit is the transposition-table value above which a stored
// entry encodes a lower bound rather than an upper bound.
const boundSplit = position.MaxScore - position.MinScore + 1

// Engine is a single search: it owns its own transposition table and
// node counter and may optionally consult a shared, read-only opening
// book. It is not safe for concurrent use; callers running solves
// concurrently must construct one Engine per goroutine.
type Engine struct {
	table *ttable.Table
	book  *book.Book
	nodes uint64
}

// New constructs an Engine with a freshly allocated, default-size
// transposition table. book may be nil, in which case the engine always
// falls through to search.
func New(b *book.Book) *Engine {
	return &Engine{table: ttable.New(), book: b}
}

// NewWithTableLogSize is New but with a transposition table sized to
// the smallest prime at least 2^logSize instead of the package default,
// for callers (the CLI
// driver's --tt-log-size flag) that want to trade memory for search
// speed.
func NewWithTableLogSize(b *book.Book, logSize int) *Engine {
	return &Engine{table: ttable.NewWithLogSize(logSize), book: b}
}

// NodeCount returns the number of negamax calls made since construction
// or the last Reset.
func (e *Engine) NodeCount() uint64 {
	return e.nodes
}

// Reset zeros the node counter and discards every transposition-table
// entry, without freeing the table's backing arrays.
func (e *Engine) Reset() {
	e.nodes = 0
	e.table.Reset()
}

// Solve returns the game-theoretic score of pos from the perspective of
// the side to move: positive means that side wins with perfect play,
// negative means it loses, zero means a draw. The magnitude is
// (BoardSize+1-m)/2, where m is the number of stones on the board just
// before the winning stone, so earlier results have larger magnitudes.
func (e *Engine) Solve(pos *position.Position) int {
	if pos.CanWinNext() {
		return (position.BoardSize + 1 - pos.Moves()) / 2
	}

	if score, ok := e.book.Lookup(pos); ok {
		return int(score) + position.MinScore - 1
	}

	lo := -(position.BoardSize - pos.Moves()) / 2
	hi := (position.BoardSize + 1 - pos.Moves()) / 2

	for lo < hi {
		med := lo + (hi-lo)/2
		if med <= 0 && lo/2 < med {
			med = lo / 2
		} else if med >= 0 && hi/2 > med {
			med = hi / 2
		}

		r := e.negamax(pos, med, med+1)
		if r <= med {
			hi = r
		} else {
			lo = r
		}
	}
	return lo
}

// negamax returns the exact score of pos if it lies within [alpha,
// beta], otherwise a bound on it. Precondition: alpha < beta and
// !pos.CanWinNext().
func (e *Engine) negamax(pos *position.Position, alpha, beta int) int {
	e.nodes++

	next := pos.PossibleNonLosingMoves()
	if next == 0 {
		return -(position.BoardSize - pos.Moves()) / 2
	}
	if pos.Moves() >= position.BoardSize-2 {
		return 0
	}

	if min := -(position.BoardSize - 2 - pos.Moves()) / 2; alpha < min {
		alpha = min
		if alpha >= beta {
			return alpha
		}
	}
	if max := (position.BoardSize - 1 - pos.Moves()) / 2; beta > max {
		beta = max
		if alpha >= beta {
			return beta
		}
	}

	key := pos.Key()
	if v := int(e.table.Get(key)); v != 0 {
		if v > boundSplit {
			lower := v + 2*position.MinScore - position.MaxScore - 2
			if alpha < lower {
				alpha = lower
				if alpha >= beta {
					return alpha
				}
			}
		} else {
			upper := v + position.MinScore - 1
			if beta > upper {
				beta = upper
				if alpha >= beta {
					return beta
				}
			}
		}
	}

	var moves sorter.Sorter
	for i := position.W - 1; i >= 0; i-- {
		col := columnOrder[i]
		if move := next & position.ColumnMask(col); move != 0 {
			moves.Add(move, pos.MoveScore(move))
		}
	}

	for move := moves.Next(); move != 0; move = moves.Next() {
		child := *pos
		child.PlayMove(move)

		score := -e.negamax(&child, -beta, -alpha)
		if score >= beta {
			e.table.Put(key, uint8(score+position.MaxScore-2*position.MinScore+2))
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	e.table.Put(key, uint8(alpha-position.MinScore+1))
	return alpha
}
