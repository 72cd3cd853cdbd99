package castles_test

import (
	"context"
	"testing"

	"github.com/antma/pyshogi-db/pkg/castles"
	"github.com/antma/pyshogi-db/pkg/shogigame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSfenFindSilverCrown(t *testing.T) {
	tag, ok, err := castles.SfenFind("ln1g3rl/1ks2bg2/2pp1snp1/pp2ppp1p/7P1/PPP1PPP1P/1SBP2N2/1KG1GS1R1/LN6L w - 38")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(castles.SilverCrown), tag)
}

func TestSfenFindSnowRoofCastle(t *testing.T) {
	tag, ok, err := castles.SfenFind("ln1g1k1nl/1r1s2gb1/p1pp1pspp/1p2p1p2/9/2PP3P1/PP1SPPP1P/1BG1GS1R1/LN1K3NL w - 18")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(castles.SnowRoofCastle), tag)
}

func TestSfenFindNoCastleOnStartPosition(t *testing.T) {
	_, ok, err := castles.SfenFind("lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindAllRejectsNonStandardStart(t *testing.T) {
	// An explicit start position is rejected even when it is the standard one.
	sfen := "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"
	g, err := shogigame.NewGame(context.Background(), &sfen, true)
	require.NoError(t, err)
	_, err = castles.FindAll(g, 50)
	assert.ErrorIs(t, err, castles.ErrNonStandardStart)
}

func TestFindAllOnStandardStartReturnsEmptyResult(t *testing.T) {
	g, err := shogigame.NewGame(context.Background(), nil, true)
	require.NoError(t, err)
	require.NoError(t, g.DoUsiMove("7g7f"))
	result, err := castles.FindAll(g, 50)
	require.NoError(t, err)
	assert.Empty(t, result.Sente)
	assert.Empty(t, result.Gote)
}
