package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextOnEmptyReturnsZero(t *testing.T) {
	var s Sorter
	assert.Equal(t, uint64(0), s.Next())
}

func TestPopsHighestScoreFirst(t *testing.T) {
	var s Sorter
	s.Add(1, 3)
	s.Add(2, 7)
	s.Add(3, 1)

	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(3), s.Next())
	assert.Equal(t, uint64(0), s.Next())
}

func TestEqualScoresPopLastInsertedFirst(t *testing.T) {
	var s Sorter
	s.Add(10, 5)
	s.Add(20, 5)
	s.Add(30, 5)

	assert.Equal(t, uint64(30), s.Next())
	assert.Equal(t, uint64(20), s.Next())
	assert.Equal(t, uint64(10), s.Next())
}

func TestResetClearsBuffer(t *testing.T) {
	var s Sorter
	s.Add(1, 1)
	s.Add(2, 2)
	s.Reset()
	assert.Equal(t, uint64(0), s.Next())
}
