package openings_test

import (
	"context"
	"testing"

	"github.com/antma/pyshogi-db/pkg/openings"
	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAtPositionMatchesExactSfenTable(t *testing.T) {
	ppr, err := pattern.NewPPR("lnsgkgsnl/1r5b1/pppppp1pp/6p2/2P6/9/PP1PPPPPP/1B5R1/LNSGKGSNL w - 4")
	require.NoError(t, err)
	op, ok := openings.FindAtPosition(ppr)
	require.True(t, ok)
	assert.Equal(t, openings.QuickIshida, op)
}

func TestFindAtPositionSuppressesNoneSentinel(t *testing.T) {
	ppr, err := pattern.NewPPR("lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4")
	require.NoError(t, err)
	_, ok := openings.FindAtPosition(ppr)
	assert.False(t, ok)
}

func TestFindAtPositionNoMatchOnInitialPosition(t *testing.T) {
	ppr, err := pattern.NewPPR(shogi.InitialSFEN)
	require.NoError(t, err)
	_, ok := openings.FindAtPosition(ppr)
	assert.False(t, ok)
}

func TestFindAtPositionMatchesSfenAndMoveTable(t *testing.T) {
	ppr, err := pattern.NewPPR("lnsgk1snl/1r4g2/p1pppp1pp/6p2/1p5P1/2P6/PP1PPPP1P/1S5R1/LN1GKGSNL b Bb 11")
	require.NoError(t, err)
	m, err := ppr.Position().ParseUsiMove("8h7g")
	require.NoError(t, err)
	_, err = ppr.DoMove(&m)
	require.NoError(t, err)
	op, ok := openings.FindAtPosition(ppr)
	require.True(t, ok)
	assert.Equal(t, openings.BishopExchange, op)
}

func TestFindAllRejectsNonStandardStart(t *testing.T) {
	// An explicit start position is rejected even when it is the standard one.
	sfen := "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"
	g, err := shogigame.NewGame(context.Background(), &sfen, true)
	require.NoError(t, err)
	_, err = openings.FindAll(g, 60)
	assert.ErrorIs(t, err, openings.ErrNonStandardStart)
}

func TestFindAllDetectsUresinoStyleFromFirstGoteMove(t *testing.T) {
	g, err := shogigame.NewGame(context.Background(), nil, true)
	require.NoError(t, err)
	require.NoError(t, g.DoUsiMove("7g7f"))
	require.NoError(t, g.DoUsiMove("3a4b"))
	result, err := openings.FindAll(g, 60)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Gote[openings.UresinoStyle])
}

func TestFindAllOnStandardStartReturnsNoSwingingRookYet(t *testing.T) {
	g, err := shogigame.NewGame(context.Background(), nil, true)
	require.NoError(t, err)
	require.NoError(t, g.DoUsiMove("7g7f"))
	result, err := openings.FindAll(g, 60)
	require.NoError(t, err)
	_, ok := result.Sente[openings.OpposingRook]
	assert.False(t, ok)
}
