package shogikif_test

import (
	"context"
	"testing"

	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
	"github.com/antma/pyshogi-db/pkg/shogikif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKIFPassesThroughUTF8(t *testing.T) {
	text, err := shogikif.DecodeKIF([]byte("先手：羽生善治\n"))
	require.NoError(t, err)
	assert.Equal(t, "先手：羽生善治\n", text)
}

func TestParseMoveTokenBoardMove(t *testing.T) {
	m, err := shogikif.ParseMoveToken("７六歩(77)", shogi.Sente, nil)
	require.NoError(t, err)
	assert.Equal(t, "7g7f", m.String())
	assert.False(t, m.IsPromotion())
}

func TestParseMoveTokenDrop(t *testing.T) {
	m, err := shogikif.ParseMoveToken("５五角打", shogi.Gote, nil)
	require.NoError(t, err)
	assert.True(t, m.IsDrop())
	assert.Equal(t, -shogi.Bishop, m.ToPiece)
}

func TestParseMoveTokenSameSquare(t *testing.T) {
	prev := shogi.NewCell(2, 2)
	m, err := shogikif.ParseMoveToken("同　歩(23)", shogi.Gote, &prev)
	require.NoError(t, err)
	assert.Equal(t, prev, m.ToCell)
}

func TestParseMoveTokenPromotion(t *testing.T) {
	m, err := shogikif.ParseMoveToken("２二角成(88)", shogi.Sente, nil)
	require.NoError(t, err)
	assert.True(t, m.IsPromotion())
	assert.Equal(t, shogi.Horse, m.ToPiece)
}

const sampleKIF = `先手：羽生善治(1850)
後手：谷川浩司
開始日時：2020/01/01 10:00:00
手数----指手---------消費時間--
   1 ７六歩(77)   ( 0:03/00:00:03)
   2 ３四歩(33)   ( 0:05/00:00:05)
   3 投了
`

func TestParseKIFAssemblesGame(t *testing.T) {
	g, err := shogikif.ParseKIF(context.Background(), sampleKIF)
	require.NoError(t, err)

	sente, ok := g.PlayerWithRating(shogi.Sente)
	require.True(t, ok)
	assert.Equal(t, "羽生善治(1850)", sente)

	gote, ok := g.GetTag("gote")
	require.True(t, ok)
	assert.Equal(t, "谷川浩司", gote)

	require.True(t, g.HasResult())
	r, _ := g.Result()
	assert.Equal(t, shogigame.Resignation, r)

	moves := g.Moves()
	require.Len(t, moves, 2)
	assert.Equal(t, "7g7f", moves[0].String())
	require.NotNil(t, moves[0].Time)
}
