package pattern

import "github.com/antma/pyshogi-db/pkg/shogi"

// namedPattern pairs a compiled conjunction with the tag it resolves to
// when matched, plus an optional king-cell constraint used to index it.
type namedPattern struct {
	tag     string
	pattern *PositionPattern
	king    shogi.Cell // -1 if this pattern applies regardless of king cell
}

// Recognizer holds an ordered library of tagged PositionPatterns and
// matches them against a position from one side's perspective. Patterns
// are additionally indexed by the king cell they were authored against,
// so a lookup only walks the subset that could possibly apply.
type Recognizer struct {
	patterns []namedPattern
	byKing   map[shogi.Cell][]int
}

// NewRecognizer builds an empty pattern library.
func NewRecognizer() *Recognizer {
	return &Recognizer{byKing: make(map[shogi.Cell][]int)}
}

// Add registers a tagged pattern. king, when >= 0, restricts the pattern
// to positions where the mover's king sits on that cell (mirrored for
// gote), letting Match skip every pattern that cannot apply. Pass -1 for
// patterns that must always be considered.
func (rec *Recognizer) Add(tag string, pattern *PositionPattern, king shogi.Cell) {
	idx := len(rec.patterns)
	rec.patterns = append(rec.patterns, namedPattern{tag: tag, pattern: pattern, king: king})
	if king >= 0 {
		rec.byKing[king] = append(rec.byKing[king], idx)
	} else {
		rec.byKing[-1] = append(rec.byKing[-1], idx)
	}
}

// candidates returns the pattern indices worth checking for a mover whose
// king sits on kingCell: the unconditional set plus anything indexed
// under that exact cell.
func (rec *Recognizer) candidates(kingCell shogi.Cell) []int {
	out := append([]int(nil), rec.byKing[-1]...)
	out = append(out, rec.byKing[kingCell]...)
	return out
}

// Match evaluates every candidate pattern for persp's king position and
// returns the tag of the first one that matches, in registration order.
// Every evaluated PositionPattern (whether or not it matches) has its
// result cached under its own tag via SetBasePatternResult, so later
// BASE_PATTERN references resolve to positions already computed this
// pass.
func (rec *Recognizer) Match(ppr *PositionForPatternRecognition, persp shogi.Side) (string, bool) {
	king := ppr.KingCell(persp)
	for _, idx := range rec.candidates(king) {
		np := rec.patterns[idx]
		ok := np.pattern.Evaluate(ppr, persp)
		ppr.SetBasePatternResult(np.tag, ok)
		if ok {
			return np.tag, true
		}
	}
	return "", false
}

// MatchAll evaluates every candidate pattern for persp and returns every
// tag that matched, in registration order, rather than stopping at the
// first hit. Used for base-pattern passes where several named
// sub-patterns must all be recorded before a composite pattern
// referencing them via BASE_PATTERN is evaluated.
func (rec *Recognizer) MatchAll(ppr *PositionForPatternRecognition, persp shogi.Side) []string {
	king := ppr.KingCell(persp)
	var tags []string
	for _, idx := range rec.candidates(king) {
		np := rec.patterns[idx]
		ok := np.pattern.Evaluate(ppr, persp)
		ppr.SetBasePatternResult(np.tag, ok)
		if ok {
			tags = append(tags, np.tag)
		}
	}
	return tags
}

// RecognizerResult accumulates the tags recognized for each side across a
// game, recording the move number each tag first appeared at.
type RecognizerResult struct {
	Sente map[string]int
	Gote  map[string]int
}

// NewRecognizerResult returns an empty accumulator.
func NewRecognizerResult() *RecognizerResult {
	return &RecognizerResult{Sente: make(map[string]int), Gote: make(map[string]int)}
}

func (rr *RecognizerResult) sideMap(side shogi.Side) map[string]int {
	if side == shogi.Sente {
		return rr.Sente
	}
	return rr.Gote
}

// Record stores the first occurrence of tag for side at moveNo, ignoring
// later re-matches of an already-recorded tag.
func (rr *RecognizerResult) Record(side shogi.Side, tag string, moveNo int) {
	m := rr.sideMap(side)
	if _, ok := m[tag]; !ok {
		m[tag] = moveNo
	}
}

// RecognizerSet runs one or more Recognizers (e.g. a base-pattern pass
// followed by a composite-pattern pass) over every position in a game's
// move sequence, for both sides, accumulating first-seen tags.
type RecognizerSet struct {
	Base       *Recognizer
	Composites []*Recognizer
}

// Scan walks doMove/undoMove-style callbacks supplied by the caller is
// avoided here: Scan instead takes the already-built PPR and the move
// number it currently reflects, so callers drive the game walk (using
// PositionForPatternRecognition.DoMove) and call Scan once per ply.
func (rs *RecognizerSet) Scan(ppr *PositionForPatternRecognition, moveNo int, mover shogi.Side, result *RecognizerResult) {
	if rs.Base != nil {
		rs.Base.MatchAll(ppr, mover)
	}
	for _, c := range rs.Composites {
		if tag, ok := c.Match(ppr, mover); ok {
			result.Record(mover, tag, moveNo)
		}
	}
}
