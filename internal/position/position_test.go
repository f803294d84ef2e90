package position

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPositionIsEmpty(t *testing.T) {
	p := NewPosition()
	assert.Equal(t, uint64(0), p.Board)
	assert.Equal(t, uint64(0), p.Mask)
	assert.Equal(t, 0, p.Moves())
}

func TestPlayColFlipsSideAndAdvancesPly(t *testing.T) {
	p := NewPosition()
	require.True(t, p.CanPlay(3))
	p.PlayCol(3)
	assert.Equal(t, 1, p.Moves())
	assert.Equal(t, uint64(0), p.Board, "side to move after one ply owns no stones yet")
	assert.NotEqual(t, uint64(0), p.Mask)
}

// invariant: popcount(mask) == ply, for every reachable position.
func TestPopcountMatchesPly(t *testing.T) {
	p, err := FromMoveSequence("44412255661")
	require.NoError(t, err)
	assert.Equal(t, bits.OnesCount64(p.Mask), p.Moves())
}

// invariant: current & ~mask == 0.
func TestBoardIsSubsetOfMask(t *testing.T) {
	p, err := FromMoveSequence("1234567")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.Board&^p.Mask)
}

func TestFromMoveSequenceRejectsFullColumn(t *testing.T) {
	_, err := FromMoveSequence("1111111")
	require.Error(t, err)
	var full InvalidFullColumnMove
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 1, full.Column)
}

func TestFromMoveSequenceRejectsOutOfRangeColumn(t *testing.T) {
	_, err := FromMoveSequence("8")
	require.Error(t, err)
	var col InvalidColumn
	require.ErrorAs(t, err, &col)
}

func TestFromMoveSequenceRejectsNonDigit(t *testing.T) {
	_, err := FromMoveSequence("4a2")
	require.Error(t, err)
	var char InvalidCharacter
	require.ErrorAs(t, err, &char)
	assert.Equal(t, 1, char.Index)
}

func TestFromMoveSequenceRejectsWinningMove(t *testing.T) {
	// Vertical four in column 1 (0-indexed col 0).
	_, err := FromMoveSequence("1212121")
	require.Error(t, err)
	var win InvalidWinningMove
	require.ErrorAs(t, err, &win)
}

func TestPlaySequenceStopsAtFirstIllegalToken(t *testing.T) {
	p := NewPosition()
	// The 7th ply (column 1 again) would complete a vertical four.
	n := p.PlaySequence("1212121")
	assert.Equal(t, 6, n, "stops before the winning 7th ply")
}

func TestPlaySequenceAcceptsEmpty(t *testing.T) {
	p := NewPosition()
	assert.Equal(t, 0, p.PlaySequence(""))
	assert.Equal(t, 0, p.Moves())
}

func TestCanWinNextDetectsImmediateWin(t *testing.T) {
	p, err := FromMoveSequence("121212")
	require.NoError(t, err)
	assert.True(t, p.CanWinNext())
	assert.True(t, p.IsWinningMove(0))
}

func TestPossibleNonLosingMovesForcesTheBlock(t *testing.T) {
	// "12121": three stones stacked in column 1 (index 0) for the side
	// not on move, which can complete a vertical four by playing column
	// 1 again. The only non-losing reply is to take that exact cell.
	p, err := FromMoveSequence("12121")
	require.NoError(t, err)
	require.False(t, p.CanWinNext())
	nonLosing := p.PossibleNonLosingMoves()
	assert.Equal(t, bottomMaskCol(0)<<3, nonLosing)
}

// invariant: compute_winning_position(side, mask) & mask == 0.
func TestWinningPositionsAreAlwaysEmptyCells(t *testing.T) {
	p, err := FromMoveSequence("445566")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.winningPositions()&p.Mask)
}

// Key is shared by a position and its horizontal mirror, and differs
// between positions that are not mirror images of each other.
func TestKeyIsStableUnderHorizontalReflection(t *testing.T) {
	p, err := FromMoveSequence("1234")
	require.NoError(t, err)
	mirrored, err := FromMoveSequence("7654")
	require.NoError(t, err)
	assert.Equal(t, p.Key(), mirrored.Key())
}

func TestKeyDiffersForDifferentPositions(t *testing.T) {
	a, err := FromMoveSequence("1")
	require.NoError(t, err)
	b, err := FromMoveSequence("2")
	require.NoError(t, err)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestMoveScoreCountsThreatsAfterMove(t *testing.T) {
	p, err := FromMoveSequence("445566")
	require.NoError(t, err)
	// Column 4 (index 3) holds one stone of each side. The side to move
	// already threatens both ends of its bottom-row three (columns 3 and
	// 7); playing column 4 adds no threat, and MoveScore counts both.
	move := p.Possible() & columnMask(3)
	require.NotZero(t, move)
	assert.GreaterOrEqual(t, p.MoveScore(move), 0)
	assert.Equal(t, 2, p.MoveScore(move))
}

func TestFromBoardStringCountsStones(t *testing.T) {
	board := "......." +
		"......." +
		"......." +
		"......." +
		"..oo..." +
		"..xx..."
	p, err := FromBoardString(board)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Moves())
}

func TestFromBoardStringRejectsWrongLength(t *testing.T) {
	_, err := FromBoardString("short")
	require.Error(t, err)
	var lenErr InvalidBoardStringLength
	require.ErrorAs(t, err, &lenErr)
}
