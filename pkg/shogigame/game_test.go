package shogigame_test

import (
	"context"
	"testing"
	"time"

	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T) *shogigame.Game {
	t.Helper()
	g, err := shogigame.NewGame(context.Background(), nil, false)
	require.NoError(t, err)
	return g
}

func doUsi(t *testing.T, g *shogigame.Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		require.NoError(t, g.DoUsiMove(m))
	}
}

func TestGameDoMovePawnPush(t *testing.T) {
	g := newGame(t)
	doUsi(t, g, "7g7f")
	m, ok := g.LastMove()
	require.True(t, ok)
	assert.Equal(t, "7g7f", m.String())
	assert.False(t, g.HasResult())
}

func TestGameIllegalMoveSetsResult(t *testing.T) {
	g := newGame(t)
	// there is no piece on 1a for sente to move.
	m, err := g.Position().ParseUsiMove("1a1b")
	require.NoError(t, err)
	g.DoMove(m)
	r, ok := g.Result()
	require.True(t, ok)
	assert.Equal(t, shogigame.IllegalMove, r)
}

func TestGameResignation(t *testing.T) {
	g := newGame(t)
	require.NoError(t, g.DoUsiMove("resign"))
	r, ok := g.Result()
	require.True(t, ok)
	assert.Equal(t, shogigame.Resignation, r)
	points, ok := g.SentePoints()
	require.True(t, ok)
	assert.Equal(t, -1, points)
	text, ok := g.TextResult()
	require.True(t, ok)
	assert.Equal(t, "0-1", text)
}

func TestGameSetResultFirstWriterWins(t *testing.T) {
	g := newGame(t)
	g.SetResult(shogigame.Checkmate)
	g.SetResult(shogigame.Resignation)
	r, ok := g.Result()
	require.True(t, ok)
	assert.Equal(t, shogigame.Checkmate, r)
}

func TestGamePositionsLazyMap(t *testing.T) {
	g := newGame(t)
	doUsi(t, g, "7g7f", "3c3d")
	positions, err := g.Positions()
	require.NoError(t, err)
	assert.Equal(t, shogi.InitialSFEN, positions[1])
	assert.Len(t, positions, 3)
}

func TestGameParsePlayerNameWithRating(t *testing.T) {
	g := newGame(t)
	g.ParsePlayerName("Habu Yoshiharu(1850)", "sente")
	name, ok := g.GetTag("sente")
	require.True(t, ok)
	assert.Equal(t, "Habu Yoshiharu", name)
	rendered, ok := g.PlayerWithRating(shogi.Sente)
	require.True(t, ok)
	assert.Equal(t, "Habu Yoshiharu(1850)", rendered)
}

func TestGameParsePlayerNameWithoutRating(t *testing.T) {
	g := newGame(t)
	g.ParsePlayerName("Habu Yoshiharu", "sente")
	rendered, ok := g.PlayerWithRating(shogi.Sente)
	require.True(t, ok)
	assert.Equal(t, "Habu Yoshiharu", rendered)
}

func TestGameMoveNoToSideToMove(t *testing.T) {
	g := newGame(t)
	side, err := g.MoveNoToSideToMove(1)
	require.NoError(t, err)
	assert.Equal(t, shogi.Sente, side)
	side, err = g.MoveNoToSideToMove(2)
	require.NoError(t, err)
	assert.Equal(t, shogi.Gote, side)
	_, err = g.MoveNoToSideToMove(0)
	assert.Error(t, err)
}

func TestGameDropZeroTimesKeepsRealTimes(t *testing.T) {
	g := newGame(t)
	doUsi(t, g, "7g7f")
	moves := g.Moves()
	require.Len(t, moves, 1)
	assert.Nil(t, moves[0].Time)
	d := 3 * time.Second
	moves[0].Time = &d
	g.DropZeroTimes()
	require.NotNil(t, moves[0].Time)
	assert.Equal(t, d, *moves[0].Time)
}
