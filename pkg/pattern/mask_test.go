package pattern_test

import (
	"testing"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/stretchr/testify/assert"
)

func TestCellMaskSetTest(t *testing.T) {
	m := pattern.NewCellMask(shogi.NewCell(0, 0), shogi.NewCell(8, 8))
	assert.True(t, m.Test(shogi.NewCell(0, 0)))
	assert.True(t, m.Test(shogi.NewCell(8, 8)))
	assert.False(t, m.Test(shogi.NewCell(4, 4)))
}

func TestCellMaskIntersectsAndContainsAll(t *testing.T) {
	a := pattern.NewCellMask(shogi.NewCell(1, 1), shogi.NewCell(2, 2))
	b := pattern.NewCellMask(shogi.NewCell(2, 2), shogi.NewCell(3, 3))
	assert.True(t, a.Intersects(b))
	assert.False(t, a.ContainsAll(b))
	assert.True(t, a.ContainsAll(pattern.NewCellMask(shogi.NewCell(1, 1))))
}

func TestCellMaskMirrorRoundTrips(t *testing.T) {
	c := shogi.NewCell(1, 2)
	m := pattern.NewCellMask(c)
	assert.True(t, m.Mirror().Test(c.SwapSide()))
	assert.True(t, m.Mirror().Mirror().Test(c))
}

func TestCellMaskAny(t *testing.T) {
	var m pattern.CellMask
	assert.False(t, m.Any())
	m = m.Set(shogi.NewCell(0, 0))
	assert.True(t, m.Any())
}
