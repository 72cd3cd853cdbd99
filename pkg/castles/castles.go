// Package castles recognizes the named defensive formations ("castles")
// built around a king during the opening and middlegame, by matching a
// pattern library against the position reached after each played move.
package castles

import (
	"errors"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
)

// ErrNonStandardStart is returned by FindAll for a game created with an
// explicit start position (Game.StartPos is non-nil), even when that
// position is the standard one: castle recognition assumes
// the board reached after each move is directly comparable to the
// pattern library's standard-start-relative coordinates.
var ErrNonStandardStart = errors.New("castles: game does not start from the standard initial position")

// Castle names a recognized formation.
type Castle string

const (
	SilverCrown          Castle = "SILVER_CROWN"
	EdgeKingSilverCrown  Castle = "EDGE_KING_SILVER_CROWN"
	SilverCrownAnaguma   Castle = "SILVER_CROWN_ANAGUMA"
	YaguraCastle         Castle = "YAGURA_CASTLE"
	CompleteYagura       Castle = "COMPLETE_YAGURA"
	StaticRookAnaguma    Castle = "STATIC_ROOK_ANAGUMA"
	SnowRoofCastle       Castle = "SNOW_ROOF_CASTLE"
	HighMinoCastle       Castle = "HIGH_MINO_CASTLE"
	MinoCastle           Castle = "MINO_CASTLE"
	HalfMinoCastle       Castle = "HALF_MINO_CASTLE"
	GoldMino             Castle = "GOLD_MINO"
	KimuraMino           Castle = "KIMURA_MINO"
	BoatCastle           Castle = "BOAT_CASTLE"
	ElmoCastle           Castle = "ELMO_CASTLE"
	DiamondMino          Castle = "DIAMOND_MINO"
	PeerlessGolds        Castle = "PEERLESS_GOLDS"
	SwingingRookAnaguma  Castle = "SWINGING_ROOK_ANAGUMA"
)

var alloc = pattern.NewPPAllocator()
var recognizer = buildRecognizer()

// term is shorthand for pattern.Term, kept local so the literal table
// below reads the same shape as the source it is ported from.
type term = pattern.Term

func t(piece, arg string) term { return term{Piece: piece, Arg: arg} }

// basePatternDef is one named base pattern: registered under its own tag
// so later composite patterns can reference it with "base-pattern", and
// also checked directly by the recognizer (a base pattern alone never
// carries a public Castle tag, so its direct match is discarded by
// addBase -- only composites built on top of it surface a Castle).
type basePatternDef struct {
	tag   string
	terms []term
}

// castleDef is one named, publicly surfaced castle pattern. mirror
// requests that the column-reflected variant also be registered under
// the same tag, for formations as commonly built toward the edge file as
// toward the center (most king-shelter castles qualify).
type castleDef struct {
	tag    Castle
	terms  []term
	mirror bool
}

func buildRecognizer() *pattern.Recognizer {
	rec := pattern.NewRecognizer()

	addBase := func(def basePatternDef) {
		pp, err := pattern.Compile(alloc, def.terms)
		if err != nil {
			panic(err)
		}
		rec.Add(def.tag, pp, -1)
		ppm, err := pattern.Compile(alloc, pattern.MirrorFileTerms(def.terms))
		if err != nil {
			panic(err)
		}
		rec.Add(def.tag, ppm, -1)
	}
	add := func(def castleDef) {
		pp, err := pattern.Compile(alloc, def.terms)
		if err != nil {
			panic(err)
		}
		rec.Add(string(def.tag), pp, -1)
		if def.mirror {
			ppm, err := pattern.Compile(alloc, pattern.MirrorFileTerms(def.terms))
			if err != nil {
				panic(err)
			}
			rec.Add(string(def.tag), ppm, -1)
		}
	}

	// Silver crown family: base shelter shape, then two completions that
	// differ only in which side the knight/pawn chain sits.
	addBase(basePatternDef{"SILVER_CROWN", []term{
		t("K", "28"), t("S", "27"), t("G", "38"), t("L", "19"), t("P", "26"), t("P", "16,17"),
	}})
	add(castleDef{SilverCrown, []term{
		t("base-pattern", "SILVER_CROWN"), t("N", "29"), t("P", "46,47"), t("P", "37"),
	}, true})
	add(castleDef{SilverCrown, []term{
		t("base-pattern", "SILVER_CROWN"), t("N", "37"), t("P", "46"), t("P", "36"),
	}, true})
	add(castleDef{SilverCrown, []term{
		t("K", "88"), t("S", "87"), t("G", "78"), t("P", "86"), t("P", "76"), t("P", "66,67"),
		t("L", "99"), t("N", "89"), t("P", "95,96,97"),
	}, true})
	add(castleDef{EdgeKingSilverCrown, []term{
		t("K", "98"), t("S", "87"), t("G", "78"), t("to", "78"), t("N", "89"), t("L", "99"),
		t("P", "96,97"), t("P", "86"), t("P", "76"), t("G", "49,58,67,68"),
	}, true})
	add(castleDef{SilverCrownAnaguma, []term{
		t("K", "99"), t("S", "87"), t("G", "78"), t("L", "98"), t("N", "89"), t("P", "96,97"),
		t("P", "66"), t("P", "56,57"), t("P", "46,47"), t("P", "36,37"), t("P", "26,27"), t("P", "15,16,17"),
	}, true})
	add(castleDef{DiamondMino, []term{
		t("S", "47"), t("G", "58"), t("G", "49"), t("S", "38"), t("K", "28"), t("N", "29"), t("L", "19"),
		t("P", "46"), t("P", "36"), t("P", "27"), t("P", "16,17"),
	}, true})

	// High mino family: shared base, three completions.
	addBase(basePatternDef{"HIGH_MINO", []term{
		t("G", "47"), t("to", "47"), t("K", "28"), t("S", "38"), t("G", "49"), t("L", "19"),
		t("P", "46"), t("P", "15,16,17"),
	}})
	add(castleDef{HighMinoCastle, []term{
		t("base-pattern", "HIGH_MINO"), t("P", "37"), t("P", "27"), t("N", "29"),
	}, true})
	add(castleDef{HighMinoCastle, []term{
		t("base-pattern", "HIGH_MINO"), t("P", "36"), t("P", "27"), t("N", "37"),
	}, true})
	add(castleDef{HighMinoCastle, []term{
		t("base-pattern", "HIGH_MINO"), t("P", "36"), t("P", "26"), t("N", "29"),
	}, true})

	add(castleDef{MinoCastle, []term{
		t("K", "28,39"), t("S", "38"), t("G", "49"), t("N", "29"), t("L", "19"), t("G", "58"),
		t("P", "46,47"), t("P", "36,37"), t("P", "27"), t("P", "15,16,17"),
	}, true})
	add(castleDef{GoldMino, []term{
		t("K", "28"), t("G", "38"), t("S", "48"), t("N", "29"), t("L", "19"),
		t("P", "37"), t("P", "27"), t("P", "15,16,17"),
	}, true})
	add(castleDef{HalfMinoCastle, []term{
		t("K", "28,39"), t("S", "38"), t("G", "49"), t("N", "29"), t("L", "19"),
		t("!G", "58"), t("!S", "58"),
		t("P", "47"), t("P", "37"), t("P", "27"), t("P", "15,16,17"),
	}, true})
	add(castleDef{PeerlessGolds, []term{
		t("K", "38"), t("G", "48"), t("G", "58"), t("S", "28,39"), t("N", "29"), t("L", "19"),
		t("P", "27"), t("P", "37"), t("P", "47"), t("P", "15,16,17"),
	}, true})
	add(castleDef{SwingingRookAnaguma, []term{
		t("K", "19"), t("S", "28"), t("G", "39,49"), t("L", "18"), t("N", "29"),
		t("P", "27"), t("P", "16,17"),
	}, true})

	// Kimura mino family: shared base (a mino that rejects a silver on
	// 46, the feature that distinguishes it from an ordinary mino), two
	// completions.
	addBase(basePatternDef{"KIMURA_MINO", []term{
		t("K", "28"), t("G", "38"), t("S", "47"), t("L", "19"), t("P", "27"), t("P", "16,17"), t("!S", "46"),
	}})
	add(castleDef{KimuraMino, []term{
		t("base-pattern", "KIMURA_MINO"), t("N", "29"), t("P", "37"),
	}, true})
	add(castleDef{KimuraMino, []term{
		t("base-pattern", "KIMURA_MINO"), t("N", "37"), t("P", "36"),
	}, true})

	// Static rook anaguma: shared base, two completions.
	addBase(basePatternDef{"STATIC_ROOK_ANAGUMA", []term{
		t("K", "99"), t("S", "88"), t("L", "98"), t("N", "89"), t("P", "86,87"), t("P", "96,97"),
	}})
	add(castleDef{StaticRookAnaguma, []term{
		t("base-pattern", "STATIC_ROOK_ANAGUMA"), t("G", "69,78,87"), t("to", "88"),
	}, true})
	add(castleDef{StaticRookAnaguma, []term{
		t("base-pattern", "STATIC_ROOK_ANAGUMA"), t("G", "79"), t("G", "78"),
	}, true})

	// Yagura family: shared base plus the complete-yagura refinement.
	addBase(basePatternDef{"YAGURA", []term{
		t("G", "67"), t("G", "78"), t("S", "77"), t("K", "88"), t("N", "89"), t("L", "99"),
		t("P", "66"), t("P", "76"), t("P", "87"), t("P", "97"),
	}})
	add(castleDef{CompleteYagura, []term{
		t("base-pattern", "YAGURA"), t("P", "56"), t("S", "57"),
	}, true})
	add(castleDef{YaguraCastle, []term{
		t("base-pattern", "YAGURA"),
	}, true})

	add(castleDef{SnowRoofCastle, []term{
		t("K", "69"), t("G", "78"), t("G", "58"), t("S", "67"),
		t("P", "76"), t("P", "66"), t("P", "56,57"), t("N", "89"), t("L", "99"),
	}, true})
	add(castleDef{BoatCastle, []term{
		t("K", "78"), t("S", "79"), t("G", "69"), t("G", "58"), t("S", "48"), t("B", "88"),
		t("N", "89"), t("L", "99"),
		t("P", "56,57"), t("P", "67"), t("P", "76"), t("P", "87"), t("P", "95,96,97"),
	}, true})
	add(castleDef{ElmoCastle, []term{
		t("G", "79"), t("S", "68"), t("K", "78"), t("B", "88"), t("N", "89"), t("L", "99"),
		t("P", "76"), t("P", "87"), t("P", "96,97"),
	}, true})

	return rec
}

// FindAll walks g's moves from the initial position, stopping at
// maxHands plies or as soon as a side's opening phase ends, and returns
// the set of castle tags recognized for sente and for gote with the move
// number each first appeared at. Returns ErrNonStandardStart for a game
// that began from a non-standard position, matching the source's own
// assumption that castle recognition only runs over games started from
// the initial position.
func FindAll(g *shogigame.Game, maxHands int) (*pattern.RecognizerResult, error) {
	if g.StartPos() != nil {
		return nil, ErrNonStandardStart
	}
	ppr, err := pattern.NewPPR(shogi.InitialSFEN)
	if err != nil {
		return nil, err
	}
	result := pattern.NewRecognizerResult()
	moves := g.Moves()
	n := len(moves)
	if maxHands < n {
		n = maxHands
	}
	for i := 0; i < n; i++ {
		m := moves[i]
		mover := ppr.Position().SideToMove()
		if _, err := ppr.DoMove(&m); err != nil {
			return nil, err
		}
		if !ppr.IsOpening(mover) {
			break
		}
		if tag, ok := recognizer.Match(ppr, mover); ok {
			result.Record(mover, tag, i+1)
		}
	}
	return result, nil
}

// SfenFind runs the recognizer directly against a single position from
// the perspective of the side that just moved, for ad-hoc lookups (tests, tooling) that don't have
// a move history to walk.
func SfenFind(sfen string) (string, bool, error) {
	ppr, err := pattern.NewPPR(sfen)
	if err != nil {
		return "", false, err
	}
	if tag, ok := recognizer.Match(ppr, ppr.Position().SideToMove().Opponent()); ok {
		return tag, true, nil
	}
	return "", false, nil
}
