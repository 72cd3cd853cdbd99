// Package shogi implements a shogi rules engine: piece and cell encodings,
// moves, and a Position with full move execution, undo, legality checking,
// and SFEN serialization.
package shogi

import "fmt"

// Piece is a signed magnitude-and-side encoding in the closed range
// [-Dragon, Dragon], i.e. [-15, 15]. Magnitude 0 is empty. Magnitudes 1..7 are the
// unpromoted pieces; 8 is the king; 9..15 are the promoted counterparts
// (gold and king have no promoted form). The sign is the side: +1 sente,
// -1 gote.
type Piece int8

// Unpromoted piece magnitudes.
const (
	Free Piece = iota
	Pawn
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King
)

// PromotedOffset is added to an unpromoted magnitude to get its promoted form.
const PromotedOffset = Piece(King)

// Promoted piece magnitudes.
const (
	Tokin      = Pawn + PromotedOffset   // 9
	PromLance  = Lance + PromotedOffset  // 10
	PromKnight = Knight + PromotedOffset // 11
	PromSilver = Silver + PromotedOffset // 12
	Horse      = Bishop + PromotedOffset // 14, promoted bishop
	Dragon     = Rook + PromotedOffset   // 15, promoted rook
)

// Side is the mover: +1 for sente, -1 for gote.
type Side int8

const (
	Sente Side = 1
	Gote  Side = -1
)

// Opponent returns the other side.
func (s Side) Opponent() Side { return -s }

// String returns "sente" or "gote".
func (s Side) String() string {
	if s == Sente {
		return "sente"
	}
	return "gote"
}

const asciiPieces = "plnsgbrk"

// kifuGlyphs[magnitude-1] is the Japanese glyph for that magnitude; index 12
// ('?') is unused since gold has no promoted form.
const kifuGlyphs = "歩香桂銀金角飛玉と杏圭全?馬龍"

var unpromotable = map[Piece]bool{Free: true, Gold: true, King: true}

// Magnitude returns the absolute value of p (0..15).
func (p Piece) Magnitude() Piece {
	if p < 0 {
		return -p
	}
	return p
}

// Side returns the owning side of a nonzero piece; zero for Free.
func (p Piece) Side() Side {
	switch {
	case p > 0:
		return Sente
	case p < 0:
		return Gote
	default:
		return 0
	}
}

// IsLegal reports whether p is a well-formed piece value: magnitude in
// [0, 15], never 13 (there is no promoted gold), and sign consistent with a
// nonzero magnitude.
func (p Piece) IsLegal() bool {
	m := p.Magnitude()
	if m > Piece(Dragon) {
		return false
	}
	if m == Gold+PromotedOffset {
		return false
	}
	return true
}

// IsPromoted reports whether p is a promoted piece (magnitude 9..15).
func (p Piece) IsPromoted() bool {
	return p.Magnitude() > King
}

// Promote returns the promoted form of p. It panics if p is Free, a king, a
// gold, or already promoted -- callers must check CanPromote first, mirroring
// the original implementation's raise-on-misuse contract.
func (p Piece) Promote() Piece {
	m := p.Magnitude()
	if unpromotable[m] || p.IsPromoted() {
		panic(fmt.Sprintf("shogi: cannot promote piece %d", p))
	}
	if p < 0 {
		return p - PromotedOffset
	}
	return p + PromotedOffset
}

// CanPromote reports whether Promote is valid for p.
func (p Piece) CanPromote() bool {
	m := p.Magnitude()
	return !unpromotable[m] && !p.IsPromoted()
}

// Unpromote returns the unpromoted form of p (a no-op if p is already
// unpromoted).
func (p Piece) Unpromote() Piece {
	if !p.IsPromoted() {
		return p
	}
	if p < 0 {
		return p + PromotedOffset
	}
	return p - PromotedOffset
}

// ToASCII renders p in the SFEN alphabet: lowercase for gote, uppercase for
// sente, '+' prefix for a promoted piece, empty string for Free.
func (p Piece) ToASCII() string {
	if p == Free {
		return ""
	}
	m := p.Unpromote().Magnitude()
	c := asciiPieces[m-1]
	prefix := ""
	if p.IsPromoted() {
		prefix = "+"
	}
	if p < 0 {
		return prefix + string(c)
	}
	return prefix + string(c-'a'+'A')
}

// PieceFromASCII parses a single SFEN piece letter (no '+' prefix; callers
// strip that separately) into an unsigned unpromoted magnitude, or Free if c
// is not a recognized piece letter.
func PieceFromASCII(c byte) Piece {
	lc := c
	if lc >= 'A' && lc <= 'Z' {
		lc = lc - 'A' + 'a'
	}
	for i := 0; i < len(asciiPieces); i++ {
		if asciiPieces[i] == lc {
			return Piece(i + 1)
		}
	}
	return Free
}

// KifuChar returns the single Japanese glyph for p's magnitude.
func (p Piece) KifuChar() rune {
	m := p.Unpromote().Magnitude()
	r := []rune(kifuGlyphs)
	if p.IsPromoted() {
		return r[p.Magnitude()-1]
	}
	return r[m-1]
}

// KifuStr renders p the way running kifu move text does: a single glyph for
// tokin/horse/dragon, but "成"+unpromoted glyph for promoted lance/knight/
// silver, since those three share no dedicated single-glyph convention in
// practice the way と/馬/龍 do.
func (p Piece) KifuStr() string {
	switch p.Magnitude() {
	case Tokin, Horse, Dragon:
		return string(p.KifuChar())
	}
	if p.IsPromoted() {
		m := p.Unpromote().Magnitude()
		return "成" + string([]rune(kifuGlyphs)[m-1])
	}
	return string(p.KifuChar())
}

// kifuCharToMagnitude inverts kifuGlyphs: the glyph at index i (0-based)
// names magnitude i+1, except index 12 ('?'), which is unused because gold
// has no promoted form.
var kifuCharToMagnitude = func() map[rune]Piece {
	m := make(map[rune]Piece)
	for i, r := range []rune(kifuGlyphs) {
		if r == '?' {
			continue
		}
		m[r] = Piece(i + 1)
	}
	return m
}()

// PieceFromKifuChar parses a single Japanese piece glyph (unpromoted or
// promoted, e.g. '歩' or 'と') into its unsigned magnitude.
func PieceFromKifuChar(r rune) (Piece, bool) {
	m, ok := kifuCharToMagnitude[r]
	return m, ok
}

// MoveOffset is a single (row, col) step authored from sente's perspective
// (sente moves toward decreasing row). For gote, both components are
// negated -- the board is point-symmetric, matching Cell.SwapSide.
type MoveOffset struct {
	DRow, DCol int
}

var (
	goldOffsets = []MoveOffset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, 0}}

	silverOffsets = []MoveOffset{{-1, -1}, {-1, 0}, {-1, 1}, {1, -1}, {1, 1}}

	knightOffsets = []MoveOffset{{-2, -1}, {-2, 1}}

	kingOffsets = []MoveOffset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

	lanceOffsets  = []MoveOffset{{-1, 0}}
	bishopOffsets = []MoveOffset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookOffsets   = []MoveOffset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	pawnOffsets   = []MoveOffset{{-1, 0}}
)

// MoveTable returns the short-range offsets and, independently, the
// sliding-direction offsets for p's magnitude (from sente's perspective).
// Short offsets are single-step destinations; sliding offsets repeat until
// blocked. Horse and Dragon have both: their short king-like step, plus
// their long diagonal/orthogonal slide.
func (p Piece) MoveTable() (short, sliding []MoveOffset) {
	switch p.Unpromote().Magnitude() {
	case Pawn:
		if p.IsPromoted() {
			return goldOffsets, nil
		}
		return pawnOffsets, nil
	case Lance:
		if p.IsPromoted() {
			return goldOffsets, nil
		}
		return nil, lanceOffsets
	case Knight:
		if p.IsPromoted() {
			return goldOffsets, nil
		}
		return knightOffsets, nil
	case Silver:
		if p.IsPromoted() {
			return goldOffsets, nil
		}
		return silverOffsets, nil
	case Gold:
		return goldOffsets, nil
	case Bishop:
		if p.IsPromoted() {
			return kingOffsets, bishopOffsets
		}
		return nil, bishopOffsets
	case Rook:
		if p.IsPromoted() {
			return kingOffsets, rookOffsets
		}
		return nil, rookOffsets
	case King:
		return kingOffsets, nil
	}
	return nil, nil
}

// IsSliding reports whether p has a long-range (sliding) movement component:
// lance, bishop, rook, horse, dragon.
func (p Piece) IsSliding() bool {
	_, sliding := p.MoveTable()
	return len(sliding) > 0
}
