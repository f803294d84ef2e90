package ttable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrime(t *testing.T) {
	assert.True(t, isPrime(2))
	assert.True(t, isPrime(3))
	assert.False(t, isPrime(4))
	assert.True(t, isPrime(97))
	assert.False(t, isPrime(91)) // 7*13
}

func TestNextPrimeFindsPrimeAtOrAboveInput(t *testing.T) {
	p := nextPrime(100)
	assert.True(t, isPrime(p))
	assert.GreaterOrEqual(t, p, uint64(100))
	assert.Less(t, p, uint64(110))
}

func TestSizeIsOddAndAtLeastTwoToTheLogSize(t *testing.T) {
	assert.Equal(t, uint64(1), Size%2)
	assert.GreaterOrEqual(t, Size, uint64(1)<<LogSize)
}

func TestGetOnEmptyTableReturnsZero(t *testing.T) {
	tbl := newWithCapacity(97)
	assert.Equal(t, uint8(0), tbl.Get(42))
}

func TestPutThenGetRoundTrips(t *testing.T) {
	tbl := newWithCapacity(97)
	tbl.Put(42, 7)
	assert.Equal(t, uint8(7), tbl.Get(42))
}

func TestGetMissesOnDifferentKeySameIndex(t *testing.T) {
	tbl := newWithCapacity(97)
	tbl.Put(42, 7)
	// 42 + 97 collides on the same index as 42 but is a different key.
	assert.Equal(t, uint8(0), tbl.Get(42+97))
}

func TestPutOverwritesOnIndexCollision(t *testing.T) {
	tbl := newWithCapacity(97)
	tbl.Put(42, 7)
	tbl.Put(42+97, 9)
	assert.Equal(t, uint8(9), tbl.Get(42+97))
	assert.Equal(t, uint8(0), tbl.Get(42), "newest write wins the shared slot")
}

func TestResetClearsAllEntries(t *testing.T) {
	tbl := newWithCapacity(97)
	tbl.Put(1, 1)
	tbl.Put(2, 2)
	tbl.Reset()
	assert.Equal(t, uint8(0), tbl.Get(1))
	assert.Equal(t, uint8(0), tbl.Get(2))
}
