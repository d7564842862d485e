package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorPartition(t *testing.T) {
	counts := map[Color]int{}
	for _, n := range Numbers() {
		c := ColorOf(n)
		require.Contains(t, []Color{Red, Black, Green}, c, "pocket %d", n)
		counts[c]++
	}

	assert.Equal(t, 1, counts[Green])
	assert.Equal(t, 18, counts[Red])
	assert.Equal(t, 18, counts[Black])
	assert.Equal(t, Green, ColorOf(0))
}

func TestColorOfKnownPockets(t *testing.T) {
	tests := []struct {
		n    Number
		want Color
	}{
		{1, Red},
		{2, Black},
		{10, Black},
		{11, Black},
		{17, Black},
		{19, Red},
		{28, Black},
		{29, Black},
		{36, Red},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorOf(tt.n), "pocket %d", tt.n)
	}
}

func TestZeroBelongsToNoGroup(t *testing.T) {
	assert.False(t, IsOdd(0))
	assert.False(t, IsEven(0))
	assert.False(t, IsLow(0))
	assert.False(t, IsHigh(0))
	for which := 1; which <= 3; which++ {
		assert.False(t, InDozen(0, which))
		assert.False(t, InColumn(0, which))
	}
	assert.Equal(t, -1, Row(0))
	assert.Equal(t, -1, Col(0))
}

func TestGroups(t *testing.T) {
	for which := 1; which <= 3; which++ {
		assert.Len(t, Dozen(which), 12)
		assert.Len(t, Column(which), 12)
	}
	assert.Nil(t, Dozen(4))
	assert.Nil(t, Column(0))

	assert.Equal(t, []Number{1, 4, 7, 10, 13, 16, 19, 22, 25, 28, 31, 34}, Column(1))
	assert.Equal(t, Number(13), Dozen(2)[0])
	assert.Equal(t, Number(36), Dozen(3)[11])

	for _, group := range [][]Number{Reds(), Blacks(), Odds(), Evens(), Lows(), Highs()} {
		assert.Len(t, group, 18)
	}
}

func TestLayoutGeometry(t *testing.T) {
	assert.Equal(t, 0, Row(1))
	assert.Equal(t, 0, Col(1))
	assert.Equal(t, 2, Col(3))
	assert.Equal(t, 11, Row(36))
	assert.Equal(t, 1, Col(35))
}

func TestValid(t *testing.T) {
	assert.True(t, Number(0).Valid())
	assert.True(t, Number(36).Valid())
	assert.False(t, Number(37).Valid())
	assert.False(t, Number(-1).Valid())
	assert.Equal(t, Green, ColorOf(99))
}
