package pattern_test

import (
	"testing"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doUsi(t *testing.T, ppr *pattern.PositionForPatternRecognition, usi string) {
	t.Helper()
	m, err := ppr.Position().ParseUsiMove(usi)
	require.NoError(t, err)
	_, err = ppr.DoMove(&m)
	require.NoError(t, err)
}

func TestNewPPRSeedsPawnAndKingState(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.True(t, ppr.PawnsMask(shogi.Sente).Test(shogi.NewCell(6, 4)))
	assert.Equal(t, shogi.NewCell(8, 4), ppr.KingCell(shogi.Sente))
	assert.Equal(t, shogi.NewCell(8, 4), ppr.KingCell(shogi.Gote))
}

func TestDoMoveUpdatesPawnMask(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	doUsi(t, ppr, "7g7f")
	assert.False(t, ppr.PawnsMask(shogi.Sente).Test(shogi.NewCell(6, 6)))
	assert.True(t, ppr.PawnsMask(shogi.Sente).Test(shogi.NewCell(5, 6)))
}

func TestUnmovableMaskClearsOnBackRankMove(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	full := ppr.UnmovableMask(shogi.Sente)
	assert.Equal(t, uint16(0x1ff), full)
	doUsi(t, ppr, "3i4h")
	after := ppr.UnmovableMask(shogi.Sente)
	assert.NotEqual(t, full, after)
}

func TestCapturesMaskRecordsCaptureSquare(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	doUsi(t, ppr, "7g7f")
	doUsi(t, ppr, "3c3d")
	doUsi(t, ppr, "8h2b")
	assert.True(t, ppr.CapturesMask(shogi.Sente).Test(shogi.NewCell(1, 1)))
}

func TestIsOpeningClearsOnMajorPieceCapture(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.True(t, ppr.IsOpening(shogi.Sente))
	assert.True(t, ppr.IsOpening(shogi.Gote))
	doUsi(t, ppr, "7g7f")
	doUsi(t, ppr, "3c3d")
	doUsi(t, ppr, "8h2b")
	// Losing the bishop does not end gote's opening; losing the 3a silver does.
	doUsi(t, ppr, "9c9d")
	doUsi(t, ppr, "2b3a")
	assert.False(t, ppr.IsOpening(shogi.Gote))
	assert.True(t, ppr.IsOpening(shogi.Sente))
}

func TestNeverMovedToTracksDestinations(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.True(t, ppr.NeverMovedTo(shogi.Pawn, shogi.NewCell(5, 6)))
	doUsi(t, ppr, "7g7f")
	assert.False(t, ppr.NeverMovedTo(shogi.Pawn, shogi.NewCell(5, 6)))
}

func TestLastMoveTracksMostRecentMove(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	assert.Nil(t, ppr.LastMove())
	doUsi(t, ppr, "7g7f")
	require.NotNil(t, ppr.LastMove())
	assert.Equal(t, "7g7f", ppr.LastMove().String())
}

func TestUndoMoveRestoresDerivedState(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	before := ppr.PawnsMask(shogi.Sente)
	m, err := ppr.Position().ParseUsiMove("7g7f")
	require.NoError(t, err)
	undo, err := ppr.DoMove(&m)
	require.NoError(t, err)
	ppr.UndoMove(&m, undo)
	assert.Equal(t, before, ppr.PawnsMask(shogi.Sente))
}

func TestSetAndGetBasePatternResult(t *testing.T) {
	ppr := newPPR(t, shogi.InitialSFEN)
	_, ok := ppr.BasePatternResult("YAGURA")
	assert.False(t, ok)
	ppr.SetBasePatternResult("YAGURA", true)
	v, ok := ppr.BasePatternResult("YAGURA")
	require.True(t, ok)
	assert.True(t, v)
}
