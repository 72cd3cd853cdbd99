// Package openings recognizes named joseki-style openings -- both by an
// exact starting-position/first-move lookup table and by a literal
// pattern library matched against the position reached after each played
// move -- and layers a rook-destination-file heuristic on top to catch
// the broad "swinging rook" family a piece-position pattern alone can't
// pin down.
package openings

import (
	"errors"

	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
)

// ErrNonStandardStart is returned by FindAll for a game created with an
// explicit start position (Game.StartPos is non-nil), even when that
// position is the standard one, matching castles.FindAll's assumption that
// opening recognition only runs over games played from the initial position.
var ErrNonStandardStart = errors.New("openings: game does not start from the standard initial position")

// Opening names a recognized opening strategy.
type Opening string

const (
	OpposingRook                       Opening = "OPPOSING_ROOK"
	ThirdFileRook                      Opening = "THIRD_FILE_ROOK"
	ForthFileRook                      Opening = "FORTH_FILE_ROOK"
	GokigenCentralRook                 Opening = "GOKIGEN_CENTRAL_ROOK"
	DoubleSwingingRook                 Opening = "DOUBLE_SWINGING_ROOK"
	ForthThirdFileRookStrategy         Opening = "FORTH_THIRD_FILE_ROOK_STRATEGY"
	QuickIshida                        Opening = "QUICK_ISHIDA"
	IshidaStyle                        Opening = "ISHIDA_STYLE"
	MasudasIshidaStyle                 Opening = "MASUDAS_ISHIDA_STYLE"
	SakataOpposingRook                 Opening = "SAKATA_OPPOSING_ROOK"
	AmahikoOpposingRook                Opening = "AMAHIKO_OPPOSING_ROOK"
	FujiiSystem                        Opening = "FUJII_SYSTEM"
	LeghornSpecial                     Opening = "LEGHORN_SPECIAL"
	SleeveRook                         Opening = "SLEEVE_ROOK"
	RightHandForthFileRook             Opening = "RIGHT_HAND_FORTH_FILE_ROOK"
	RightHandKing                      Opening = "RIGHT_HAND_KING"
	DoubleWingAttack                   Opening = "DOUBLE_WING_ATTACK"
	DoubleWingAttackClimbingSilver     Opening = "DOUBLE_WING_ATTACK_CLIMBING_SILVER"
	UFOSilver                          Opening = "UFO_SILVER"
	RecliningSilver                    Opening = "RECLINING_SILVER"
	BishopExchange                     Opening = "BISHOP_EXCHANGE"
	OneTurnLossBishopExchange          Opening = "ONE_TURN_LOSS_BISHOP_EXCHANGE"
	BishopExchangeRecliningSilver      Opening = "BISHOP_EXCHANGE_RECLINING_SILVER"
	BishopExchangeClimbingSilver       Opening = "BISHOP_EXCHANGE_CLIMBING_SILVER"
	SidePawnPicker                     Opening = "SIDE_PAWN_PICKER"
	Bishop33Strategy                   Opening = "BISHOP33_STRATEGY"
	AonoStyle                          Opening = "AONO_STYLE"
	YuukiStyle                         Opening = "YUUKI_STYLE"
	Bishop45Strategy                   Opening = "BISHOP45_STRATEGY"
	MaruyamaVaccine                    Opening = "MARUYAMA_VACCINE"
	Silver37SuperRapid                 Opening = "SILVER_37_SUPER_RAPID"
	SuperRapidAttack                   Opening = "SUPER_RAPID_ATTACK"
	UresinoStyle                       Opening = "URESINO_STYLE"
	PrimitiveClimbingSilver            Opening = "PRIMITIVE_CLIMBING_SILVER"
	IjimasBackBishopStrategy           Opening = "IJIMAS_BACK_BISHOP_STRATEGY"
	SwingingRookSlowGameCountermeasure Opening = "SWINGING_ROOK_SLOW_GAME_COUNTERMEASURE"
	SpearingTheBird                    Opening = "SPEARING_THE_BIRD"
	SilverHornedSnowRoof               Opening = "SILVER_HORNED_SNOW_ROOF"
	ClimbingGold                       Opening = "CLIMBING_GOLD"

	// openingNone suppresses a position that would otherwise read as an
	// opening match: recorded as a dictionary hit, then thrown away,
	// rather than omitted from the table entirely -- the entry itself
	// is the documentation ("this looks like BISHOP_EXCHANGE, it is not").
	openingNone Opening = "NONE"
	// swingingRook is never surfaced as a standalone result, only as the
	// condition updateSetByRookFile checks the opponent's
	// set for before granting DOUBLE_SWINGING_ROOK.
	swingingRook Opening = "SWINGING_ROOK"
)

var alloc = pattern.NewPPAllocator()
var recognizer = buildRecognizer()

type term = pattern.Term

func t(piece, arg string) term { return term{Piece: piece, Arg: arg} }

// hand is shorthand for a bare hand-count Term, e.g. hand("B", 1): sente
// holds exactly one bishop in hand.
func hand(piece string, count int) term {
	return term{Piece: piece, Arg: "#" + string(rune('0'+count))}
}

type recognizerDef struct {
	tag   Opening
	terms []term
}

func buildRecognizer() *pattern.Recognizer {
	rec := pattern.NewRecognizer()
	add := func(def recognizerDef) {
		pp, err := pattern.Compile(alloc, def.terms)
		if err != nil {
			panic(err)
		}
		rec.Add(string(def.tag), pp, -1)
	}

	add(recognizerDef{RightHandKing, []term{
		t("K", "48"), t("G", "58"), t("S", "47"), t("N", "37"), t("L", "19"), t("R", "29"),
		t("P", "46"), t("P", "36"), t("P", "56,57"), t("P", "25,26"), t("P", "16,17"),
	}})
	add(recognizerDef{PrimitiveClimbingSilver, append([]term{
		t("S", "27"), t("to", "27"), t("P", "25,26"), t("B", "88"), t("R", "28"), t("P", "76,77"),
	}, append(lastRow("3"), pattern.AdjacentPawns(7, 1, 10, []int{2, 7})...)...)})
	add(recognizerDef{PrimitiveClimbingSilver, append([]term{
		t("S", "37"), t("to", "37"), t("P", "25,26"), t("B", "88"), t("R", "28"), t("P", "36"), t("P", "76,77"), t("G", "78"),
	}, append(lastRow("36"), pattern.AdjacentPawns(7, 1, 10, []int{2, 3, 7})...)...)})
	add(recognizerDef{GokigenCentralRook, append([]term{
		t("R", "58"), t("to", "58"), t("P", "55,56"), t("P", "76"), t("B", "77,88"),
	}, append(lastRow(""), pattern.AdjacentPawns(7, 2, 9, []int{5, 7})...)...)})
	add(recognizerDef{BishopExchangeRecliningSilver, []term{
		t("to", "56"), t("S", "56"), t("P", "46"), t("P", "67"), t("P", "57"), t("R", "25,26,27,28,29"), t("r", "81,82,83,84,85"),
		hand("B", 1), hand("b", 1), t("P", "36"), t("N", "29,37"), t("G", "48,58"),
	}})
	add(recognizerDef{RecliningSilver, []term{
		t("to", "56"), t("S", "56"), t("P", "46"), t("P", "67"), t("P", "57"), t("R", "26,28"),
		hand("B", 0), hand("b", 0), t("P", "36"), t("N", "37"), t("P", "76"), t("G", "78"),
	}})
	add(recognizerDef{IjimasBackBishopStrategy, append([]term{
		t("B", "79"), t("K", "59"), t("S", "78"), t("P", "56"), t("R", "28"), t("!r", "82"),
		t("P", "25,26"), t("P", "96,97"), t("P", "16,17"),
		t("L", "19"), t("L", "99"), t("N", "29"), t("N", "89"), t("S", "39,48"), t("G", "69"), t("G", "58,69"),
	}, pattern.AdjacentPawns(7, 3, 9, []int{5})...)})
	add(recognizerDef{SakataOpposingRook, append([]term{
		t("G", "77"), t("R", "88"), t("P", "76"), t("P", "26,27"), t("to", "88"),
		hand("B", 1), hand("b", 1),
		t("P", "96,97"), t("P", "16,17"),
	}, append(lastRow("6"), pattern.AdjacentPawns(7, 3, 9, []int{7})...)...)})
	add(recognizerDef{BishopExchange, []term{
		t("S", "77"), t("R", "28"), hand("B", 1), hand("b", 1), t("P", "76"), t("P", "67"),
		t("K", "59"), t("L", "99"), t("L", "19"), t("N", "29"), t("N", "89"), t("from", "68,88"), t("to", "77"), t("G", "78"),
		t("max-gold-moves", "2"),
	}})
	add(recognizerDef{BishopExchangeClimbingSilver, []term{
		t("S", "26"), t("from", "27"), t("to", "26"), t("P", "25"), t("R", "28"), t("P", "37"),
		hand("B", 1), hand("b", 1),
	}})
	add(recognizerDef{SwingingRookSlowGameCountermeasure, append([]term{
		t("B", "77"), t("from", "88"), t("to", "77"), t("K", "78"), t("G", "58,67"),
		t("P", "87"), t("P", "76"), t("P", "66,67"), t("P", "56"), t("S", "48,57"), t("R", "28"), t("!p", "43"),
	}, lastRow("2345")...)})
	add(recognizerDef{AmahikoOpposingRook, append([]term{
		t("B", "66"), t("R", "88"), t("to", "88"), t("S", "77"), t("P", "76"),
	}, append(lastRow("7"), pattern.AdjacentPawns(7, 2, 9, []int{7})...)...)})
	add(recognizerDef{SpearingTheBird, append([]term{
		t("B", "79"), t("K", "78"), t("S", "57"), t("R", "28"), t("P", "56"), t("P", "67"), t("P", "47"), t("P", "25"),
	}, append(lastRow("357"), pattern.AdjacentPawns(7, 3, 9, []int{5})...)...)})
	add(recognizerDef{FujiiSystem, append([]term{
		t("P", "36"), t("to", "36"), t("R", "68"), t("S", "38"), t("S", "67,78"), t("G", "58,69"), t("B", "77"),
		t("P", "76"), t("P", "66,67"), t("P", "57"), t("P", "87"), t("P", "27"), t("P", "15,16"),
	}, lastRow("367")...)})
	add(recognizerDef{FujiiSystem, append([]term{
		t("P", "46"), t("to", "46"), t("R", "68"), t("S", "38"), t("S", "67,78"), t("G", "58,69"), t("B", "77"),
		t("P", "76"), t("P", "66,67"), t("P", "57"), t("P", "87"), t("P", "27"), t("P", "15,16"),
	}, lastRow("367")...)})
	add(recognizerDef{SilverHornedSnowRoof, []term{
		t("K", "69"), t("G", "78"), t("G", "58"), t("S", "67"), t("S", "47"), t("to", "47"),
		t("P", "76"), t("P", "66"), t("P", "56,57"), t("P", "46"), t("N", "89"), t("L", "99"), t("N", "29,37"), t("L", "19"), t("B", "77,88"),
	}})
	add(recognizerDef{QuickIshida, append([]term{
		t("P", "75"), t("R", "78"), t("to", "78"), t("from", "28"), t("B", "88"), t("p", "34"),
	}, append(lastRow(""), pattern.AdjacentPawns(7, 1, 10, []int{7})...)...)})
	add(recognizerDef{MasudasIshidaStyle, append([]term{
		t("K", "48"), t("to", "48"), t("R", "78"), t("P", "75"), t("B", "88"), t("r", "82"), t("p", "34"),
	}, append(lastRow("5"), pattern.AdjacentPawns(7, 1, 10, []int{7})...)...)})
	add(recognizerDef{IshidaStyle, []term{
		t("R", "76"), t("N", "77"), t("to", "77"), t("P", "66"), t("P", "75"), t("P", "87"), t("B", "88,97"), t("P", "96,97"), t("L", "99"),
	}})
	add(recognizerDef{ClimbingGold, []term{
		t("G", "27"), t("to", "27"), t("from", "38"), t("P", "25,26"), t("R", "28"),
		t("P", "37"), t("p", "35"), t("N", "29"), t("L", "19"),
	}})
	add(recognizerDef{OneTurnLossBishopExchange, append(append([]term{
		t("HORSE", "22"), t("to", "22"), t("from", "88"), t("side", "-1"), t("R", "28"), t("G", "69,78"), t("P", "76"),
	}, pattern.AdjacentPawns(7, 3, 7, nil)...), lastRow("6")...)})
	add(recognizerDef{LeghornSpecial, append(append([]term{
		t("R", "68"), t("to", "68"), t("from", "28"), hand("B", 1), hand("b", 1), t("S", "77"),
	}, lastRow("7")...), pattern.AdjacentPawns(7, 2, 9, []int{7})...)})
	add(recognizerDef{UFOSilver, append(append([]term{
		t("S", "36"), t("to", "36"), t("from", "27"), t("R", "28"), t("G", "78"), t(" ", "25"), t(" ", "24"),
	}, lastRow("36")...), pattern.AdjacentPawns(7, 3, 7, nil)...)})
	add(recognizerDef{ForthThirdFileRookStrategy, append(append([]term{
		t("R", "78"), t("from", "68"), t("to", "78"), t("P", "75"), t("K", "38"), t("B", "88"),
	}, lastRow("5")...), pattern.AdjacentPawns(7, 2, 9, []int{7})...)})

	return rec
}

func lastRow(exclude string) []term {
	return []term{{Piece: "LAST_ROW", Arg: exclude}}
}

// sfenTable is a plain exact-SFEN lookup, ported from the source's own
// SFENMap: castle/opening detection compares positions by their SFEN
// board+hand+side fields, ignoring the move-number suffix, so this keys
// on the full literal string as played rather than re-deriving that
// comparison in Go.
var sfenTable = map[string]Opening{
	"lnsgkgsnl/1r5b1/pppppp1pp/6p2/2P6/9/PP1PPPPPP/1B5R1/LNSGKGSNL w - 4":                   QuickIshida,
	"ln1g1gsnl/1r3k1b1/p1sppp1pp/2p3p2/1p2P4/2P6/PPBP1PPPP/3SRK3/LN1G1GSNL b - 15":           Silver37SuperRapid,
	"lnsgkgsnl/4r2+B1/pppp1p1pp/4p1p2/7P1/2P6/PP1PPPP1P/7R1/LNSGKGSNL w B 8":                 MaruyamaVaccine,
	"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B1S3R1/LN1GKGSNL w - 2":                      UresinoStyle,
	"lnsgk1snl/1r4gb1/p1ppppppp/9/1p5P1/9/PPPPPPP1P/1BG3SR1/LNS1KG1NL w - 8":                 DoubleWingAttack,
	"ln1gk1snl/1rs3gb1/p1ppppppp/9/1p5P1/9/PPPPPPP1P/1BG3SR1/LNS1KG1NL b - 9":                DoubleWingAttack,
	"lnsgk1snl/1r4gb1/p1ppppppp/9/7P1/1p7/PPPPPPP1P/1BG3SR1/LNS1KGSNL b - 9":                 DoubleWingAttack,
	"lnsgk1snl/6gb1/p1pppp2p/6R2/9/1rP6/P2PPPP1P/1BG6/LNS1KGSNL w 3P2p 16":                   SidePawnPicker,
	"lnsgk1snl/6g2/p1ppppb1p/6R2/9/1rP6/P2PPPP1P/1BG6/LNS1KGSNL b 3P2p 17":                   Bishop33Strategy,
	"ln1gk1snl/3s2g2/p1ppppb1p/6R2/9/1rP3P2/P2PPP2P/1BG1K4/LNS2GSNL w 3P2p 20":                AonoStyle,
	"lnsgk2nl/6gs1/p1ppppb1p/6R2/9/1rP3P2/P2PPP2P/1BG1K4/LNS2GSNL w 3P2p 20":                  AonoStyle,
	"lnsg2snl/4k1g2/p1ppppb1p/6R2/9/1rP3P2/P2PPP2P/1BG1K4/LNS2GSNL w 3P2p 20":                 AonoStyle,
	"lnsgk1snl/6g2/p1ppppb1p/6R2/9/1rP6/P2PPPP1P/1BGK5/LNS2GSNL w 3P2p 18":                    YuukiStyle,
	"lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4":                      openingNone,
}

// sfenMoveTable keys on the position reached plus the move that reached
// it, for openings only recognizable by the move that commits to them,
// not by the resulting position alone (the source's _OPENINGS_POS_AND_MOVE_D).
var sfenMoveTable = map[string]Opening{
	"lnsgk1snl/1r4g2/p1pppp1pp/6p2/1p5P1/2P6/PPSPPPP1P/7R1/LN1GKGSNL w Bb 12\x008h7g":                BishopExchange,
	"lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/4P4/PPPP1PPPP/1B2R4/LNSGKGSNL w - 4\x002h5h":                    GokigenCentralRook,
	"lnsgk1snl/6g2/p1pppp2p/6R2/5b3/1rP6/P2PPPP1P/1SG4S1/LN2KG1NL b B4Pp 21\x00B*4e":                 Bishop45Strategy,
	"lnsgk1snl/6gb1/p1pppp2p/6pR1/9/P1r6/3PPPP1P/1BG6/LNS1KGSNL b 2P3p 17\x008f7f":                   SidePawnPicker,
	"lnsgk1snl/6gb1/p1pppp2p/6pR1/9/P1r6/2BPPPP1P/2G6/LNS1KGSNL w 2P3p 18\x008h7g":                   Bishop33Strategy,
	"lnsgk1snl/1r4gb1/p1ppppppp/7P1/1p7/9/PPPPPPP1P/1BG4R1/LNS1KGSNL w - 8\x002e2d":                  DoubleWingAttack,
	"ln1gk1snl/1rs3gb1/p1pppppp1/8p/1p7/9/PPPPPPPSP/1BG4R1/LNS1KG1NL w P 16\x003h2g":                 DoubleWingAttackClimbingSilver,
	"lnsgkgsnl/4r4/pppp1pb1p/6pR1/9/2P1P4/PP1P1PP1P/1S2G4/LN1GK1SNL b B2Pp 17\x00B*3c":                SuperRapidAttack,
	"lnsgkgs+Rl/4r4/pppp1pb1p/6p2/9/2P1P4/PP1P1PP1P/1S2G4/LN1GK1SNL w BN2Pp 18\x002d2a+":              SuperRapidAttack,
}

// FindAtPosition checks ppr against the exact-SFEN table, then the
// SFEN+move table (if a move has just been played), then the literal
// pattern recognizer, in that order -- mirroring the source's own lookup
// priority, cheapest and most specific first.
func FindAtPosition(ppr *pattern.PositionForPatternRecognition) (Opening, bool) {
	sfen := ppr.Position().Sfen(true)
	if op, ok := sfenTable[sfen]; ok {
		if op == openingNone {
			return "", false
		}
		return op, true
	}
	if lm := ppr.LastMove(); lm != nil {
		if op, ok := sfenMoveTable[sfen+"\x00"+lm.String()]; ok {
			return op, true
		}
	}
	persp := ppr.Position().SideToMove().Opponent()
	if tag, ok := recognizer.Match(ppr, persp); ok {
		return Opening(tag), true
	}
	return "", false
}

// beforeRookOpenings are the two openings the rook-file heuristic treats
// as "nothing has been recognized yet": a side credited with only these
// is still eligible for an OPPOSING_ROOK/THIRD_FILE_ROOK/etc. label on its
// first rook move.
var beforeRookOpenings = map[Opening]bool{
	UresinoStyle:            true,
	PrimitiveClimbingSilver: true,
}

func almostEmpty(s map[Opening]int) bool {
	for op := range s {
		if !beforeRookOpenings[op] {
			return false
		}
	}
	return true
}

// updateSetByRookFile applies the swinging/opposing-rook heuristic for a
// first rook move landing on file col (mover's own-perspective numbering):
// mySet is the mover's accumulated openings, opponentSet the other side's.
func updateSetByRookFile(moveNo int, col int, mySet, opponentSet map[Opening]int) {
	if col > 5 {
		if _, ok := opponentSet[swingingRook]; ok {
			recordFirst(mySet, DoubleSwingingRook, moveNo)
			return
		}
	}
	switch col {
	case 8:
		if almostEmpty(mySet) {
			recordFirst(mySet, OpposingRook, moveNo)
		}
		recordFirst(mySet, swingingRook, moveNo)
	case 7:
		if almostEmpty(mySet) {
			recordFirst(mySet, ThirdFileRook, moveNo)
		}
		recordFirst(mySet, swingingRook, moveNo)
	case 6:
		if almostEmpty(mySet) {
			recordFirst(mySet, ForthFileRook, moveNo)
		}
		recordFirst(mySet, swingingRook, moveNo)
	case 5:
		recordFirst(mySet, swingingRook, moveNo)
	case 4:
		if almostEmpty(mySet) {
			recordFirst(mySet, RightHandForthFileRook, moveNo)
		}
	case 3:
		if almostEmpty(mySet) && moveNo <= 5 {
			recordFirst(mySet, SleeveRook, moveNo)
		}
	}
}

func recordFirst(s map[Opening]int, op Opening, moveNo int) {
	if _, ok := s[op]; !ok {
		s[op] = moveNo
	}
}

// removeRedundant drops the internal swingingRook marker and prunes
// openings a more specific sibling already covers, mirroring the
// source's own post-pass cleanup.
func removeRedundant(s map[Opening]int) {
	delete(s, swingingRook)
	if _, ok := s[SakataOpposingRook]; ok {
		delete(s, BishopExchange)
		delete(s, OpposingRook)
	}
	if _, ok := s[AmahikoOpposingRook]; ok {
		delete(s, OpposingRook)
	}
	if _, ok := s[PrimitiveClimbingSilver]; ok {
		delete(s, RightHandForthFileRook)
	}
	if _, ok := s[LeghornSpecial]; ok {
		delete(s, ForthFileRook)
	}
	if _, ok := s[QuickIshida]; ok {
		delete(s, ThirdFileRook)
	}
}

// uresinoFirstGoteMove is gote's defining first move in the Ureshino
// style: an early left-silver advance to 4b, played as the game's second
// ply.
const uresinoFirstGoteMove = "3a4b"

// Result holds every opening recognized for each side, keyed by tag, with
// the move number each first appeared at.
type Result struct {
	Sente map[Opening]int
	Gote  map[Opening]int
}

// FindAll walks g's moves from the initial position, applying the
// exact-position/pattern recognizer at every ply plus the rook-file
// heuristic on each side's first rook move, then prunes redundant labels.
// Returns ErrNonStandardStart for a game that did not start from the
// standard initial position.
func FindAll(g *shogigame.Game, maxHands int) (*Result, error) {
	if g.StartPos() != nil {
		return nil, ErrNonStandardStart
	}
	moves := g.Moves()
	result := &Result{Sente: make(map[Opening]int), Gote: make(map[Opening]int)}
	if len(moves) > 1 && moves[1].String() == uresinoFirstGoteMove {
		recordFirst(result.Gote, UresinoStyle, 2)
	}

	ppr, err := pattern.NewPPR(shogi.InitialSFEN)
	if err != nil {
		return nil, err
	}
	n := len(moves)
	if maxHands < n {
		n = maxHands
	}
	for i := 0; i < n; i++ {
		m := moves[i]
		mover := ppr.Position().SideToMove()
		mySet, opponentSet := result.Sente, result.Gote
		if mover == shogi.Gote {
			mySet, opponentSet = result.Gote, result.Sente
		}
		if col, ok := ppr.FirstRookMoveFile(mover, &m); ok {
			updateSetByRookFile(i+1, col, mySet, opponentSet)
		}
		if _, err := ppr.DoMove(&m); err != nil {
			return nil, err
		}
		if op, ok := FindAtPosition(ppr); ok {
			recordFirst(mySet, op, i+1)
		}
	}
	removeRedundant(result.Sente)
	removeRedundant(result.Gote)
	return result, nil
}
