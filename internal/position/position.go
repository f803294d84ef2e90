// Package position implements the bitboard representation of a Connect
// Four position: move legality, threat detection, move ordering scores
// and the position key used by the transposition table.
package position

import (
	"math/bits"
	"strings"
)

// Bit layout for the 7x6 board. Each column uses H+1 bits; the extra,
// always-zero top bit per column is a sentinel that stops shift
// arithmetic from one column leaking into the next.
//
//	 6 13 20 27 34 41 48
//	---------------------
//	| 5 12 19 26 33 40 47 |
//	| 4 11 18 25 32 39 46 |
//	| 3 10 17 24 31 38 45 |
//	| 2  9 16 23 30 37 44 |
//	| 1  8 15 22 29 36 43 |
//	| 0  7 14 21 28 35 42 |
//	---------------------
const (
	W         int = 7
	H         int = 6
	BoardSize int = W * H
	Centre    int = W / 2
	MinScore  int = -(BoardSize)/2 + 3
	MaxScore  int = (BoardSize+1)/2 - 3
)

// Position is a value-typed snapshot of a Connect Four game: Board is
// the bitboard of stones belonging to the side to move, Mask is the
// bitboard of all occupied cells. The side to move is implied by ply
// parity; it is never stored explicitly.
//
// A Position is never recorded after a move that completes a four-in-a-row;
// callers must check IsWinningMove before calling PlayCol or PlayMove.
type Position struct {
	Board uint64
	Mask  uint64
	moves int
}

// bottomMask is a mask of the bottom cell of every column.
func bottomMask() uint64 {
	var mask uint64
	for i := 0; i < W; i++ {
		mask |= bottomMaskCol(i)
	}
	return mask
}

// boardMask is a mask of every on-board cell, excluding the sentinel row.
func boardMask() uint64 {
	return bottomMask() * ((1 << H) - 1)
}

// NewPosition returns the empty starting position.
func NewPosition() *Position {
	return &Position{}
}

// FromBoardString parses a 42-character board literal made of '.', 'o'
// and 'x' (row-major, top-left to bottom-right; other characters are
// ignored). 'x' denotes the side to move, 'o' the opponent. The caller
// is responsible for passing a legal, non-winning board: an invalid
// board shape is rejected, but an illegal arrangement of stones is not
// detected.
func FromBoardString(boardString string) (*Position, error) {
	boardString = strings.ToLower(boardString)
	var chars []rune
	for _, c := range boardString {
		if c == '.' || c == 'o' || c == 'x' {
			chars = append(chars, c)
		}
	}

	if len(chars) != BoardSize {
		return nil, InvalidBoardStringLength{Actual: len(chars), Expected: BoardSize}
	}

	var board, mask uint64
	var moves int

	for i, c := range chars {
		if c == '.' {
			continue
		}

		row := H - (i / W) - 1
		col := i % W
		bitIndex := row + col*(H+1)

		if c == 'x' {
			board |= uint64(1) << bitIndex
		}
		mask |= uint64(1) << bitIndex
		moves++
	}

	return &Position{Board: board, Mask: mask, moves: moves}, nil
}

// PlaySequence applies the digits '1'..'9' of seq as 1-indexed column
// plays, stopping at the first illegal token: a non-digit, an
// out-of-range or full column, or a move that would complete a win
// (Position never represents a won state). It returns the number of
// moves successfully applied, so the caller can tell a fully-consumed
// sequence from one that was rejected partway through.
func (p *Position) PlaySequence(seq string) int {
	for i, c := range seq {
		if c < '1' || c > '9' {
			return i
		}
		col := int(c-'0') - 1
		if col < 0 || col >= W || !p.CanPlay(col) || p.IsWinningMove(col) {
			return i
		}
		p.PlayCol(col)
	}
	return len(seq)
}

// FromMoveSequence parses seq the same way PlaySequence does, but
// returns a descriptive error instead of a partial count: useful for
// callers (tests, alternate front ends) that want to reject bad input
// outright rather than silently truncate it.
func FromMoveSequence(seq string) (*Position, error) {
	p := NewPosition()
	for i, c := range seq {
		if c < '1' || c > '9' {
			return nil, InvalidCharacter{Character: c, Index: i}
		}
		col := int(c-'0') - 1
		if col < 0 || col >= W {
			return nil, InvalidColumn{Column: col, Index: i}
		}
		if !p.CanPlay(col) {
			return nil, InvalidFullColumnMove{Column: col + 1, Index: i}
		}
		if p.IsWinningMove(col) {
			return nil, InvalidWinningMove{Column: col, Index: i}
		}
		p.PlayCol(col)
	}
	return p, nil
}

// Moves returns the number of stones already placed (the ply count).
func (p *Position) Moves() int {
	return p.moves
}

// Key returns the canonical position key used by the transposition
// table: the smaller of the position's natural key (Board+Mask) and its
// horizontal mirror's key. The opening book uses its own ternary key
// (book.CanonicalKey), not this one. Horizontal reflection
// preserves game-theoretic value, so collapsing mirror-twins to one key
// is a safe, free compression.
func (p *Position) Key() uint64 {
	key := p.Board + p.Mask

	mirroredBoard, mirroredMask := p.mirroredBitmasks()
	mirroredKey := mirroredBoard + mirroredMask

	if mirroredKey < key {
		return mirroredKey
	}
	return key
}

func (p *Position) mirroredBitmasks() (uint64, uint64) {
	var mirroredBoard, mirroredMask uint64

	for col := 0; col < Centre; col++ {
		mirroredCol := W - 1 - col
		shift := uint64(mirroredCol-col) * uint64(H+1)
		mirroredBoard |= ((p.Board & columnMask(col)) << shift) |
			((p.Board & columnMask(mirroredCol)) >> shift)
		mirroredMask |= ((p.Mask & columnMask(col)) << shift) |
			((p.Mask & columnMask(mirroredCol)) >> shift)
	}

	if W&1 == 1 {
		mirroredBoard |= p.Board & columnMask(Centre)
		mirroredMask |= p.Mask & columnMask(Centre)
	}

	return mirroredBoard, mirroredMask
}

// CanPlay reports whether col still has room for a stone.
func (p *Position) CanPlay(col int) bool {
	return p.Mask&topMaskCol(col) == 0
}

// IsWinningMove reports whether playing col completes a four-in-a-row
// for the side to move.
func (p *Position) IsWinningMove(col int) bool {
	return p.winningPositions()&p.Possible()&columnMask(col) != 0
}

// CanWinNext reports whether the side to move has any immediate winning
// reply.
func (p *Position) CanWinNext() bool {
	return p.winningPositions()&p.Possible() != 0
}

// PlayCol drops a stone for the side to move into col. The caller must
// have checked CanPlay(col) first.
func (p *Position) PlayCol(col int) {
	p.PlayMove(p.Mask + bottomMaskCol(col))
}

// PlayMove drops a stone at the single landing bit move, as computed by
// the caller (e.g. taken from Possible or PossibleNonLosingMoves). The
// caller must have already confirmed this does not apply two stones to
// the same column.
func (p *Position) PlayMove(move uint64) {
	p.Board ^= p.Mask
	p.Mask |= move
	p.moves++
}

// Possible returns a mask of the landing square of every column that
// still has room.
func (p *Position) Possible() uint64 {
	return (p.Mask + bottomMask()) & boardMask()
}

// PossibleNonLosingMoves returns a mask of replies that do not hand the
// opponent an immediate win. The precondition is !CanWinNext(); a
// return of 0 means every reply loses in one ply.
func (p *Position) PossibleNonLosingMoves() uint64 {
	possible := p.Possible()
	opponentWins := p.opponentWinningPositions()

	forcedMoves := possible & opponentWins
	if forcedMoves != 0 {
		if forcedMoves&(forcedMoves-1) != 0 {
			// Two or more one-ply threats: the opponent cannot be blocked.
			return 0
		}
		possible = forcedMoves
	}

	// Never play directly beneath one of the opponent's winning cells.
	return possible &^ (opponentWins >> 1)
}

func (p *Position) winningPositions() uint64 {
	return computeWinningPosition(p.Board, p.Mask)
}

func (p *Position) opponentWinningPositions() uint64 {
	return computeWinningPosition(p.Board^p.Mask, p.Mask)
}

// computeWinningPosition returns the mask of empty cells that would
// complete a four-in-a-row for side, scanning all four alignment
// directions by shift-and-intersect.
func computeWinningPosition(side, mask uint64) uint64 {
	// Vertical.
	r := (side << 1) & (side << 2) & (side << 3)

	// Horizontal and both diagonals share the same three-in-a-row pattern
	// at different shift widths.
	for _, shift := range [3]int{H + 1, H, H + 2} {
		q := (side << shift) & (side << (2 * shift))
		r |= q & (side << (3 * shift))
		r |= q & (side >> shift)

		q = (side >> shift) & (side >> (2 * shift))
		r |= q & (side << shift)
		r |= q & (side >> (3 * shift))
	}

	return r & (boardMask() ^ mask)
}

// MoveScore returns the number of winning cells the side to move would
// have after playing move, counting threats it already had as well as
// new ones: a forward-looking threat count used purely to order
// candidate moves, not to score the position itself.
func (p *Position) MoveScore(move uint64) int {
	return bits.OnesCount64(computeWinningPosition(p.Board|move, p.Mask))
}

// IsWonPosition reports whether either side has already completed a
// four-in-a-row. Positions produced by this package never reach this
// state; it exists for validating externally-constructed boards (e.g.
// FromBoardString).
func (p *Position) IsWonPosition() bool {
	return isAligned(p.Board) || isAligned(p.Board^p.Mask)
}

func isAligned(side uint64) bool {
	for _, shift := range [4]int{H + 1, H, H + 2, 1} {
		m := side & (side >> shift)
		if m&(m>>(2*shift)) != 0 {
			return true
		}
	}
	return false
}

func topMaskCol(col int) uint64 {
	return uint64(1) << (H - 1 + col*(H+1))
}

func bottomMaskCol(col int) uint64 {
	return uint64(1) << (col * (H + 1))
}

func columnMask(col int) uint64 {
	return ColumnMask(col)
}

// ColumnMask returns a mask of every cell in col, empty or not. The
// search engine uses it to split a candidate-move mask by column when
// building its static exploration order.
func ColumnMask(col int) uint64 {
	return ((uint64(1) << H) - 1) << (col * (H + 1))
}
