// Package pattern implements a small predicate DSL over
// PositionForPatternRecognition: PiecePattern atoms, PositionPattern
// conjunctions with adaptive reordering, a structural-sharing allocator,
// and a Recognizer that matches an ordered pattern library against a
// position, keyed by the opponent's king cell.
package pattern

import (
	"fmt"
	"sort"

	"github.com/antma/pyshogi-db/pkg/shogi"
)

// Op names a PiecePattern's opcode.
type Op int

const (
	OpEQ Op = iota
	OpIN
	OpNotIn
	OpPiecesEq
	OpPawnsIn
	OpPawnsMask
	OpLastRow
	OpFromIn
	OpToIn
	OpSide
	OpNoMove
	OpBasePattern
	OpMaxMoveCount
)

// counter tracks how often a PiecePattern has been evaluated and how
// often it came out true, driving adaptive reordering. It is shared by
// every PositionPattern that references the same interned PiecePattern.
type counter struct {
	Hits, Calls int
}

// PiecePattern is a single compiled, authored-from-sente's-perspective
// predicate over a PositionForPatternRecognition. Use PPAllocator to
// build one: it interns by opcode+argument so identical predicates across
// a pattern library share one counter.
type PiecePattern struct {
	key string
	op  Op

	piece shogi.Piece
	cells CellMask
	count int
	mask  CellMask
	rows  uint16
	side  shogi.Side
	base  string

	counter *counter
}

func (p *PiecePattern) eval(ppr *PositionForPatternRecognition, persp shogi.Side) bool {
	p.counter.Calls++
	ok := p.evalRaw(ppr, persp)
	if ok {
		p.counter.Hits++
	}
	return ok
}

func mirrorCell(c shogi.Cell, persp shogi.Side) shogi.Cell {
	if persp == shogi.Gote {
		return c.SwapSide()
	}
	return c
}

func mirrorPiece(p shogi.Piece, persp shogi.Side) shogi.Piece {
	if persp == shogi.Gote {
		return -p
	}
	return p
}

func mirrorMask(m CellMask, persp shogi.Side) CellMask {
	if persp == shogi.Gote {
		return m.Mirror()
	}
	return m
}

func (p *PiecePattern) evalRaw(ppr *PositionForPatternRecognition, persp shogi.Side) bool {
	pos := ppr.Position()
	switch p.op {
	case OpEQ:
		want := mirrorPiece(p.piece, persp)
		for c := shogi.Cell(0); c < 81; c++ {
			if p.cells.Test(c) {
				return pos.At(mirrorCell(c, persp)) == want
			}
		}
		return false
	case OpIN:
		want := mirrorPiece(p.piece, persp)
		cells := mirrorMask(p.cells, persp)
		for c := shogi.Cell(0); c < 81; c++ {
			if cells.Test(c) && pos.At(c) == want {
				return true
			}
		}
		return false
	case OpNotIn:
		want := mirrorPiece(p.piece, persp)
		cells := mirrorMask(p.cells, persp)
		for c := shogi.Cell(0); c < 81; c++ {
			if cells.Test(c) && pos.At(c) == want {
				return false
			}
		}
		return true
	case OpPiecesEq:
		want := mirrorPiece(p.piece, persp)
		side := want.Side()
		return pos.HandFor(side).Count(want) == p.count
	case OpPawnsIn:
		return ppr.PawnsMask(persp).Intersects(mirrorMask(p.mask, persp))
	case OpPawnsMask:
		return ppr.PawnsMask(persp).ContainsAll(mirrorMask(p.mask, persp))
	case OpLastRow:
		return ppr.UnmovableMask(persp)&p.rows == p.rows
	case OpFromIn:
		lm := ppr.LastMove()
		if lm == nil || lm.FromCell == nil {
			return false
		}
		return mirrorMask(p.cells, persp).Test(*lm.FromCell)
	case OpToIn:
		lm := ppr.LastMove()
		if lm == nil {
			return false
		}
		return mirrorMask(p.cells, persp).Test(lm.ToCell)
	case OpSide:
		return persp == p.side
	case OpNoMove:
		want := mirrorPiece(p.piece, persp)
		cell := mirrorCell(p.cells.firstCell(), persp)
		return ppr.NeverMovedTo(want, cell)
	case OpBasePattern:
		v, _ := ppr.BasePatternResult(p.base)
		return v
	case OpMaxMoveCount:
		want := mirrorPiece(p.piece, persp)
		return ppr.MoveCount(want) <= p.count
	}
	return false
}

// firstCell returns the lowest-numbered set cell in m, for opcodes (EQ,
// NO_MOVE) whose argument is logically a single cell stored as a mask.
func (m CellMask) firstCell() shogi.Cell {
	for c := shogi.Cell(0); c < 81; c++ {
		if m.Test(c) {
			return c
		}
	}
	return -1
}

// PPAllocator interns compiled PiecePatterns by a repr key built from
// their opcode and argument, so that identical predicates reused across a
// pattern library -- e.g. "sente's king is not on 5i" appearing in many
// castle definitions -- share one hit/call counter.
type PPAllocator struct {
	cache map[string]*PiecePattern
}

// NewPPAllocator returns an empty allocator.
func NewPPAllocator() *PPAllocator {
	return &PPAllocator{cache: make(map[string]*PiecePattern)}
}

func (a *PPAllocator) intern(key string, op Op, build func(*PiecePattern)) *PiecePattern {
	if p, ok := a.cache[key]; ok {
		return p
	}
	p := &PiecePattern{key: key, op: op, counter: &counter{}}
	build(p)
	a.cache[key] = p
	return p
}

// EQ: the board cell equals piece (sign-flipped for gote).
func (a *PPAllocator) EQ(piece shogi.Piece, cell shogi.Cell) *PiecePattern {
	key := fmt.Sprintf("EQ(%d,%d)", piece, cell)
	return a.intern(key, OpEQ, func(p *PiecePattern) {
		p.piece = piece
		p.cells = NewCellMask(cell)
	})
}

// IN: some cell in cells holds piece.
func (a *PPAllocator) IN(piece shogi.Piece, cells ...shogi.Cell) *PiecePattern {
	mask := NewCellMask(cells...)
	key := fmt.Sprintf("IN(%d,%v)", piece, mask)
	return a.intern(key, OpIN, func(p *PiecePattern) {
		p.piece = piece
		p.cells = mask
	})
}

// NotIn: no cell in cells holds piece.
func (a *PPAllocator) NotIn(piece shogi.Piece, cells ...shogi.Cell) *PiecePattern {
	mask := NewCellMask(cells...)
	key := fmt.Sprintf("NOT_IN(%d,%v)", piece, mask)
	return a.intern(key, OpNotIn, func(p *PiecePattern) {
		p.piece = piece
		p.cells = mask
	})
}

// PiecesEq: side's hand count of piece equals count.
func (a *PPAllocator) PiecesEq(piece shogi.Piece, count int) *PiecePattern {
	key := fmt.Sprintf("PIECES_EQ(%d,%d)", piece, count)
	return a.intern(key, OpPiecesEq, func(p *PiecePattern) {
		p.piece = piece
		p.count = count
	})
}

// PawnsIn: at least one of the mover's pawns is in mask.
func (a *PPAllocator) PawnsIn(mask CellMask) *PiecePattern {
	key := fmt.Sprintf("PAWNS_IN(%v)", mask)
	return a.intern(key, OpPawnsIn, func(p *PiecePattern) { p.mask = mask })
}

// PawnsMaskOp: every cell in mask holds a mover-side pawn.
func (a *PPAllocator) PawnsMaskOp(mask CellMask) *PiecePattern {
	key := fmt.Sprintf("PAWNS_MASK(%v)", mask)
	return a.intern(key, OpPawnsMask, func(p *PiecePattern) { p.mask = mask })
}

// LastRow: every back-rank file named by rows is still unmoved/uncaptured.
func (a *PPAllocator) LastRow(rows uint16) *PiecePattern {
	key := fmt.Sprintf("LAST_ROW(%d)", rows)
	return a.intern(key, OpLastRow, func(p *PiecePattern) { p.rows = rows })
}

// FromIn: the last move's origin cell is in cells.
func (a *PPAllocator) FromIn(cells ...shogi.Cell) *PiecePattern {
	mask := NewCellMask(cells...)
	key := fmt.Sprintf("FROM_IN(%v)", mask)
	return a.intern(key, OpFromIn, func(p *PiecePattern) { p.cells = mask })
}

// ToIn: the last move's destination cell is in cells.
func (a *PPAllocator) ToIn(cells ...shogi.Cell) *PiecePattern {
	mask := NewCellMask(cells...)
	key := fmt.Sprintf("TO_IN(%v)", mask)
	return a.intern(key, OpToIn, func(p *PiecePattern) { p.cells = mask })
}

// Side: matches only when evaluated from side's perspective.
func (a *PPAllocator) Side(side shogi.Side) *PiecePattern {
	key := fmt.Sprintf("SIDE(%d)", side)
	return a.intern(key, OpSide, func(p *PiecePattern) { p.side = side })
}

// NoMove: piece has never moved to cell in this game.
func (a *PPAllocator) NoMove(piece shogi.Piece, cell shogi.Cell) *PiecePattern {
	key := fmt.Sprintf("NO_MOVE(%d,%d)", piece, cell)
	return a.intern(key, OpNoMove, func(p *PiecePattern) {
		p.piece = piece
		p.cells = NewCellMask(cell)
	})
}

// BasePattern: reference to a previously evaluated named pattern's result.
func (a *PPAllocator) BasePattern(name string) *PiecePattern {
	key := "BASE_PATTERN(" + name + ")"
	return a.intern(key, OpBasePattern, func(p *PiecePattern) { p.base = name })
}

// MaxMoveCount: the mover's piece of signed magnitude piece has moved at
// most max times so far this game (drops and board moves alike).
func (a *PPAllocator) MaxMoveCount(piece shogi.Piece, max int) *PiecePattern {
	key := fmt.Sprintf("MAX_MOVE_COUNT(%d,%d)", piece, max)
	return a.intern(key, OpMaxMoveCount, func(p *PiecePattern) {
		p.piece = piece
		p.count = max
	})
}

// PositionPattern is a conjunction of PiecePatterns, matched with
// short-circuit on the first false. Its own PiecePattern order adapts
// over time: on every Fibonacci-indexed call it re-sorts by ascending hit
// ratio, so predicates that most often fail end up evaluated first.
type PositionPattern struct {
	Patterns []*PiecePattern
	calls    int
}

// NewPositionPattern builds a conjunction from the given atoms, in
// authoring order (the order used until the first reorder).
func NewPositionPattern(patterns ...*PiecePattern) *PositionPattern {
	return &PositionPattern{Patterns: append([]*PiecePattern(nil), patterns...)}
}

// Evaluate matches pp against ppr from persp's perspective.
func (pp *PositionPattern) Evaluate(ppr *PositionForPatternRecognition, persp shogi.Side) bool {
	pp.calls++
	result := true
	for _, p := range pp.Patterns {
		if !p.eval(ppr, persp) {
			result = false
			break
		}
	}
	if isFibonacci(pp.calls) {
		pp.reorder()
	}
	return result
}

func (pp *PositionPattern) reorder() {
	sort.SliceStable(pp.Patterns, func(i, j int) bool {
		return hitRatio(pp.Patterns[i]) < hitRatio(pp.Patterns[j])
	})
}

func hitRatio(p *PiecePattern) float64 {
	return float64(p.counter.Hits) / float64(p.counter.Calls+1)
}

// isFibonacci reports whether n is a Fibonacci number (1, 2, 3, 5, 8, ...),
// via the classic perfect-square identity: n is Fibonacci iff 5n²+4 or
// 5n²-4 is a perfect square.
func isFibonacci(n int) bool {
	if n <= 0 {
		return false
	}
	isSquare := func(x int) bool {
		if x < 0 {
			return false
		}
		r := isqrt(x)
		return r*r == x
	}
	return isSquare(5*n*n+4) || isSquare(5*n*n-4)
}

func isqrt(x int) int {
	if x < 2 {
		return x
	}
	lo, hi := 0, x
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if mid*mid <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
