package pattern

import "github.com/antma/pyshogi-db/pkg/shogi"

// CellMask is an 81-bit set of board cells, split across two 64-bit words
// since no single machine word covers the 9x9 board.
type CellMask struct {
	Lo, Hi uint64
}

// NewCellMask builds a mask containing exactly the given cells.
func NewCellMask(cells ...shogi.Cell) CellMask {
	var m CellMask
	for _, c := range cells {
		m = m.Set(c)
	}
	return m
}

// Set returns m with bit c turned on.
func (m CellMask) Set(c shogi.Cell) CellMask {
	if c < 64 {
		m.Lo |= 1 << uint(c)
	} else {
		m.Hi |= 1 << uint(c-64)
	}
	return m
}

// Test reports whether bit c is set in m.
func (m CellMask) Test(c shogi.Cell) bool {
	if c < 64 {
		return m.Lo&(1<<uint(c)) != 0
	}
	return m.Hi&(1<<uint(c-64)) != 0
}

// Any reports whether m has any bit set.
func (m CellMask) Any() bool { return m.Lo != 0 || m.Hi != 0 }

// Intersects reports whether m and o share a set bit.
func (m CellMask) Intersects(o CellMask) bool {
	return m.Lo&o.Lo != 0 || m.Hi&o.Hi != 0
}

// ContainsAll reports whether every bit set in o is also set in m.
func (m CellMask) ContainsAll(o CellMask) bool {
	return m.Lo&o.Lo == o.Lo && m.Hi&o.Hi == o.Hi
}

// Mirror returns m with every cell reflected via Cell.SwapSide -- the
// transform that lets a sente-authored mask be matched against gote.
func (m CellMask) Mirror() CellMask {
	var out CellMask
	for c := shogi.Cell(0); c < 81; c++ {
		if m.Test(c) {
			out = out.Set(c.SwapSide())
		}
	}
	return out
}
