package pattern

import (
	"strconv"
	"strings"

	"github.com/antma/pyshogi-db/pkg/shogi"
)

// Term is one clause of a pattern literal, in the same compact
// piece/coordinate-set shape castle and opening definitions are authored
// in: a piece letter (optionally "!"-negated, or one of the special
// tokens below) paired with a comma-separated set of candidate cells.
//
// Special Piece values:
//
//	" "              an empty cell
//	"base-pattern"   Arg names a previously registered tag instead of cells
//	"from"           Arg is the cell set the last move's origin must be in
//	"to"             Arg is the cell set the last move's destination must be in
//	"side"           Arg is "1" (sente) or "-1" (gote): which perspective this
//	                 conjunction applies to
//	"max-gold-moves" Arg is an integer N: the mover's gold has moved at most
//	                 N times so far
//	"LAST_ROW"       Arg is a digit string naming the files EXCLUDED from the
//	                 "still on the back rank" check (the files a formation's
//	                 own pieces have necessarily already left)
//
// A lowercase piece letter (k/s/g/p/l/n/b/r) names the opponent's piece
// rather than the mover's own, and a coordinate Arg prefixed with "#"
// names a hand-count rather than a cell set (e.g. "B","#1" -- one bishop
// in hand).
type Term struct {
	Piece string
	Arg   string
}

var literalPieces = map[string]shogi.Piece{
	"K": shogi.King, "S": shogi.Silver, "G": shogi.Gold, "P": shogi.Pawn,
	"L": shogi.Lance, "N": shogi.Knight, "B": shogi.Bishop, "R": shogi.Rook,
	" ": shogi.Free,
	"HORSE": shogi.Horse, "DRAGON": shogi.Dragon,
	"k": -shogi.King, "s": -shogi.Silver, "g": -shogi.Gold, "p": -shogi.Pawn,
	"l": -shogi.Lance, "n": -shogi.Knight, "b": -shogi.Bishop, "r": -shogi.Rook,
}

func parseCells(arg string) ([]shogi.Cell, error) {
	parts := strings.Split(arg, ",")
	cells := make([]shogi.Cell, 0, len(parts))
	for _, p := range parts {
		c, err := shogi.DigitalParse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Compile turns a literal term list into a PositionPattern conjunction,
// mirroring the "(piece_letter, \"col row,col row\")" tuple shape castle
// and opening libraries are written in: a single cell compiles to EQ, a
// comma-separated set to IN (or NOT_IN under "!"), and "base-pattern"
// compiles to a BASE_PATTERN reference by tag.
func Compile(a *PPAllocator, terms []Term) (*PositionPattern, error) {
	atoms := make([]*PiecePattern, 0, len(terms))
	for _, t := range terms {
		switch t.Piece {
		case "base-pattern":
			atoms = append(atoms, a.BasePattern(t.Arg))
			continue
		case "from":
			cells, err := parseCells(t.Arg)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a.FromIn(cells...))
			continue
		case "to":
			cells, err := parseCells(t.Arg)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a.ToIn(cells...))
			continue
		case "side":
			n, err := strconv.Atoi(t.Arg)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a.Side(shogi.Side(n)))
			continue
		case "max-gold-moves":
			n, err := strconv.Atoi(t.Arg)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a.MaxMoveCount(shogi.Gold, n))
			continue
		case "LAST_ROW":
			atoms = append(atoms, a.LastRow(lastRowMask(t.Arg)))
			continue
		}
		letter := t.Piece
		negate := false
		if strings.HasPrefix(letter, "!") {
			negate = true
			letter = letter[1:]
		}
		piece, ok := literalPieces[letter]
		if !ok {
			return nil, &unknownPieceLetterError{letter: t.Piece}
		}
		if strings.HasPrefix(t.Arg, "#") {
			count, err := strconv.Atoi(t.Arg[1:])
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a.PiecesEq(piece, count))
			continue
		}
		cells, err := parseCells(t.Arg)
		if err != nil {
			return nil, err
		}
		switch {
		case negate:
			atoms = append(atoms, a.NotIn(piece, cells...))
		case len(cells) == 1:
			atoms = append(atoms, a.EQ(piece, cells[0]))
		default:
			atoms = append(atoms, a.IN(piece, cells...))
		}
	}
	return NewPositionPattern(atoms...), nil
}

// lastRowMask converts exclude (a digit string naming files 1-9) into the
// bitmask of the REMAINING back-rank files, for the "LAST_ROW" term: the
// files a formation's own pieces have necessarily already vacated are
// named explicitly so they're skipped rather than asserted unmoved.
func lastRowMask(exclude string) uint16 {
	mask := uint16(0x1ff)
	for _, r := range exclude {
		if r < '1' || r > '9' {
			continue
		}
		mask &^= 1 << uint(r-'1')
	}
	return mask
}

type unknownPieceLetterError struct{ letter string }

func (e *unknownPieceLetterError) Error() string {
	return "pattern: unknown piece letter " + e.letter
}

// AdjacentPawns builds Terms asserting that, for each file in
// [fromFile, toFile), the mover's pawn still sits on homeRow (a rank
// number, 7 for the pawns' starting rank), skipping any file listed in
// except. The opening library uses it for the pawns a pattern does not
// name one by one.
func AdjacentPawns(homeRow, fromFile, toFile int, except []int) []Term {
	skip := make(map[int]bool, len(except))
	for _, f := range except {
		skip[f] = true
	}
	var terms []Term
	for f := fromFile; f < toFile; f++ {
		if skip[f] {
			continue
		}
		terms = append(terms, Term{Piece: "P", Arg: cellsForFile(f, homeRow)})
	}
	return terms
}

func cellsForFile(file, homeRow int) string {
	var b strings.Builder
	for row := homeRow; row <= homeRow && row <= 9; row++ {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digitalPair(file, row))
	}
	return b.String()
}

func digitalPair(file, row int) string {
	return string(rune('0'+file)) + string(rune('0'+row))
}

// MirrorFileTerms reflects every coordinate in terms across the board's
// central file (file f becomes file 10-f, rank unchanged) while leaving
// piece letters, negation, and base-pattern references untouched. Castle
// and opening formations are as often built toward file 8/9 (king's-side)
// as toward file 1/2 (queen's-side); authoring one literal and mirroring
// it here avoids hand-duplicating every pattern for both wings.
func MirrorFileTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		switch t.Piece {
		case "base-pattern", "side", "max-gold-moves":
			out[i] = t
			continue
		case "LAST_ROW":
			var b strings.Builder
			for _, r := range t.Arg {
				if r < '1' || r > '9' {
					continue
				}
				b.WriteRune(rune('0' + 10 - int(r-'0')))
			}
			out[i] = Term{Piece: t.Piece, Arg: b.String()}
			continue
		}
		if strings.HasPrefix(t.Arg, "#") {
			out[i] = t
			continue
		}
		parts := strings.Split(t.Arg, ",")
		for j, p := range parts {
			p = strings.TrimSpace(p)
			if len(p) == 2 && p[0] >= '1' && p[0] <= '9' {
				parts[j] = string(rune('0'+10-int(p[0]-'0'))) + p[1:]
			}
		}
		out[i] = Term{Piece: t.Piece, Arg: strings.Join(parts, ",")}
	}
	return out
}
