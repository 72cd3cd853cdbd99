package pattern_test

import (
	"testing"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPPR(t *testing.T, sfen string) *pattern.PositionForPatternRecognition {
	t.Helper()
	ppr, err := pattern.NewPPR(sfen)
	require.NoError(t, err)
	return ppr
}

func TestEQMatchesBoardCell(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	p := a.EQ(shogi.King, shogi.NewCell(8, 4))
	pp := pattern.NewPositionPattern(p)
	assert.True(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestEQMirroredForGote(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	p := a.EQ(shogi.King, shogi.NewCell(8, 4))
	pp := pattern.NewPositionPattern(p)
	assert.True(t, pp.Evaluate(ppr, shogi.Gote))
}

func TestINMatchesAnyListedCell(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	p := a.IN(shogi.Rook, shogi.NewCell(1, 1), shogi.NewCell(7, 1))
	pp := pattern.NewPositionPattern(p)
	assert.True(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestNotInFailsWhenPiecePresent(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	p := a.NotIn(shogi.King, shogi.NewCell(8, 4))
	pp := pattern.NewPositionPattern(p)
	assert.False(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestPiecesEqCountsHand(t *testing.T) {
	ppr := newPPR(t, "lnsgkgsnl/1r5b1/pppppppp1/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b P 1")
	a := pattern.NewPPAllocator()
	p := a.PiecesEq(shogi.Pawn, 1)
	pp := pattern.NewPositionPattern(p)
	assert.True(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestConjunctionShortCircuitsOnFirstFalse(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	pp := pattern.NewPositionPattern(
		a.EQ(shogi.King, shogi.NewCell(0, 0)),
		a.EQ(shogi.Rook, shogi.NewCell(1, 1)),
	)
	assert.False(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestAllocatorInternsIdenticalPredicates(t *testing.T) {
	a := pattern.NewPPAllocator()
	p1 := a.EQ(shogi.King, shogi.NewCell(8, 4))
	p2 := a.EQ(shogi.King, shogi.NewCell(8, 4))
	assert.Same(t, p1, p2)
}

func TestCompileSingleCellFoldsToEQ(t *testing.T) {
	a := pattern.NewPPAllocator()
	pp, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "59"}})
	require.NoError(t, err)
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.True(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestCompileNegation(t *testing.T) {
	a := pattern.NewPPAllocator()
	pp, err := pattern.Compile(a, []pattern.Term{{Piece: "!K", Arg: "11"}})
	require.NoError(t, err)
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.True(t, pp.Evaluate(ppr, shogi.Sente))
}

func TestMirrorFileTermsReflectsColumn(t *testing.T) {
	mirrored := pattern.MirrorFileTerms([]pattern.Term{{Piece: "K", Arg: "28"}, {Piece: "P", Arg: "16,17"}})
	assert.Equal(t, "88", mirrored[0].Arg)
	assert.Equal(t, "96,97", mirrored[1].Arg)
}

func TestIsFibonacciReorderTriggersOnFibonacciCalls(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	a := pattern.NewPPAllocator()
	alwaysFalse := a.EQ(shogi.King, shogi.NewCell(0, 0))
	alwaysTrue := a.EQ(shogi.King, shogi.NewCell(8, 4))
	pp := pattern.NewPositionPattern(alwaysTrue, alwaysFalse)
	for i := 0; i < 5; i++ {
		pp.Evaluate(ppr, shogi.Sente)
	}
	assert.Equal(t, alwaysFalse, pp.Patterns[0])
}
