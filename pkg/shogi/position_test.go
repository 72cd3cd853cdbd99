package shogi_test

import (
	"testing"

	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSfenRoundTrip(t *testing.T) {
	tests := []string{
		shogi.InitialSFEN,
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 2",
		"l4+N+R1l/2ksg4/p2p1s3/2p1pp1N1/6S1p/2r2P3/PP1P1g2P/1G1S2+b2/LN1K4L b BGN3P4p 85",
	}
	for _, sfen := range tests {
		t.Run(sfen, func(t *testing.T) {
			p, err := shogi.NewPosition(sfen)
			require.NoError(t, err)
			assert.Equal(t, sfen, p.Sfen(true))
		})
	}
}

func TestNewPositionRejectsCheckedNonMover(t *testing.T) {
	_, err := shogi.NewPosition("lnsg1gsnl/1r5b1/ppppkpppp/4p4/5N3/6P2/PPPPPP1PP/1B5R1/LNSGKGS1L b - 1")
	assert.Error(t, err)
}

func TestDoMovePawnPush(t *testing.T) {
	p, err := shogi.NewPosition(shogi.InitialSFEN)
	require.NoError(t, err)

	m, err := p.ParseUsiMove("7g7f")
	require.NoError(t, err)

	undo, err := p.DoMove(&m)
	require.NoError(t, err)
	assert.Nil(t, undo)

	assert.Equal(t, "lnsgkgsnl/1r5b1/ppppppppp/9/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 2", p.Sfen(true))

	p.UndoMove(&m, undo)
	assert.Equal(t, shogi.InitialSFEN, p.Sfen(true))
}

func TestDoMoveNifu(t *testing.T) {
	p, err := shogi.NewPosition("lnsgkgsnl/1r5b1/pppppppp1/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b P 1")
	require.NoError(t, err)

	m := shogi.Move{ToPiece: shogi.Pawn, ToCell: shogi.NewCell(2, 0)}
	_, err = p.DoMove(&m)
	assert.Error(t, err)
	var nifu *shogi.NifuError
	assert.ErrorAs(t, err, &nifu)
}

const pinnedKingSfen = "4rk3/9/9/9/9/9/9/9/4K4 b r2b4g4s4n4l18p 1"

func TestDoMoveUnresolvedCheckEscapes(t *testing.T) {
	// Sente king on 5i is in check from the gote rook on 5a (same file, no
	// blockers); moving off the file removes the check.
	p, err := shogi.NewPosition(pinnedKingSfen)
	require.NoError(t, err)

	m, err := p.ParseUsiMove("5i4i")
	require.NoError(t, err)
	_, err = p.DoMove(&m)
	assert.NoError(t, err, "moving off the file removes the check, should be legal")
}

func TestDoMoveUnresolvedCheckStaysInCheck(t *testing.T) {
	p, err := shogi.NewPosition(pinnedKingSfen)
	require.NoError(t, err)

	m, err := p.ParseUsiMove("5i5h")
	require.NoError(t, err)
	_, err = p.DoMove(&m)
	assert.Error(t, err, "king stays on the file, still in check")
	var unresolved *shogi.UnresolvedCheckError
	assert.ErrorAs(t, err, &unresolved)
}

func TestFesaImpassePoints(t *testing.T) {
	p, err := shogi.NewPosition(shogi.InitialSFEN)
	require.NoError(t, err)
	assert.False(t, p.FesaImpassePoints())
}

func TestFesaImpassePointsOnEnteringKing(t *testing.T) {
	// Sente's king and 12 other pieces (both rooks and bishops at 5 points
	// each, all golds and silvers at 1) sit in gote's camp (rows 1-3 of the
	// SFEN, i.e. rows 0-2); with 2 pawns in hand that is 20+8+2=30 points,
	// clearing the 28-point threshold.
	p, err := shogi.NewPosition("KGGGG4/SSSS5/RRBB5/9/9/9/9/9/4k4 b 2P4n4l16p 1")
	require.NoError(t, err)
	assert.True(t, p.FesaImpassePoints())
}

func TestWesternMoveStr(t *testing.T) {
	p, err := shogi.NewPosition(shogi.InitialSFEN)
	require.NoError(t, err)
	m, err := p.ParseUsiMove("7g7f")
	require.NoError(t, err)
	assert.Equal(t, "P-76", p.WesternMoveStr(m))
}
