package pattern_test

import (
	"testing"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizerMatchReturnsFirstRegisteredHit(t *testing.T) {
	a := pattern.NewPPAllocator()
	rec := pattern.NewRecognizer()
	always, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "59"}})
	require.NoError(t, err)
	never, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "11"}})
	require.NoError(t, err)
	rec.Add("NEVER", never, -1)
	rec.Add("ALWAYS", always, -1)

	ppr := newPPR(t, shogi.InitialSFEN)
	tag, ok := rec.Match(ppr, shogi.Sente)
	require.True(t, ok)
	assert.Equal(t, "ALWAYS", tag)
}

func TestRecognizerMatchReturnsFalseWhenNothingMatches(t *testing.T) {
	a := pattern.NewPPAllocator()
	rec := pattern.NewRecognizer()
	never, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "11"}})
	require.NoError(t, err)
	rec.Add("NEVER", never, -1)

	ppr := newPPR(t, shogi.InitialSFEN)
	_, ok := rec.Match(ppr, shogi.Sente)
	assert.False(t, ok)
}

func TestRecognizerMatchAllRecordsEveryHit(t *testing.T) {
	a := pattern.NewPPAllocator()
	rec := pattern.NewRecognizer()
	p1, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "59"}})
	require.NoError(t, err)
	p2, err := pattern.Compile(a, []pattern.Term{{Piece: "R", Arg: "55"}})
	require.NoError(t, err)
	rec.Add("KING_HOME", p1, -1)
	rec.Add("ROOK_MOVED", p2, -1)

	ppr := newPPR(t, shogi.InitialSFEN)
	tags := rec.MatchAll(ppr, shogi.Sente)
	assert.Equal(t, []string{"KING_HOME"}, tags)
}

func TestBasePatternReferenceSeesPriorMatch(t *testing.T) {
	a := pattern.NewPPAllocator()
	rec := pattern.NewRecognizer()
	base, err := pattern.Compile(a, []pattern.Term{{Piece: "K", Arg: "59"}})
	require.NoError(t, err)
	rec.Add("KING_HOME", base, -1)
	composite, err := pattern.Compile(a, []pattern.Term{{Piece: "base-pattern", Arg: "KING_HOME"}})
	require.NoError(t, err)
	rec.Add("COMPOSITE", composite, -1)

	ppr := newPPR(t, shogi.InitialSFEN)
	tags := rec.MatchAll(ppr, shogi.Sente)
	assert.Equal(t, []string{"KING_HOME", "COMPOSITE"}, tags)
}

func TestRecognizerResultRecordsFirstOccurrenceOnly(t *testing.T) {
	rr := pattern.NewRecognizerResult()
	rr.Record(shogi.Sente, "SILVER_CROWN", 12)
	rr.Record(shogi.Sente, "SILVER_CROWN", 20)
	assert.Equal(t, 12, rr.Sente["SILVER_CROWN"])
}
