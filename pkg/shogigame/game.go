package shogigame

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/seekerror/logw"
)

// Game is an ordered list of moves played from a starting Position, with
// tags (player names, ratings, dates, ...), per-move-number comments before
// a move, and automatic end-of-game detection (repetition, perpetual check,
// entering-king impasse) as moves are appended.
type Game struct {
	ctx               context.Context
	disableAutoDetect bool

	tags    map[string]string
	ratings map[string]int

	moves    []shogi.Move
	comments map[int][]string

	startPos *string
	pos      *shogi.Position

	startMoveNo     int
	startSideToMove shogi.Side

	result *GameResult

	repetitions map[string][]int
	checks      []bool

	positions map[int]string
}

// NewGame starts a game from startPos (nil for the standard initial
// position). disableAutoDetect suppresses the repetition/impasse scan run
// after every move -- useful when replaying a game whose recorded result
// should be trusted as-is.
func NewGame(ctx context.Context, startPos *string, disableAutoDetect bool) (*Game, error) {
	sfen := shogi.InitialSFEN
	if startPos != nil {
		sfen = *startPos
	}
	pos, err := shogi.NewPosition(sfen)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctx:               ctx,
		disableAutoDetect: disableAutoDetect,
		tags:              make(map[string]string),
		ratings:           make(map[string]int),
		comments:          make(map[int][]string),
		startPos:          startPos,
		pos:               pos,
		startMoveNo:       pos.MoveNo(),
		startSideToMove:   pos.SideToMove(),
		repetitions:       make(map[string][]int),
	}
	g.insertSfen()
	return g, nil
}

// HasResult reports whether the game has ended.
func (g *Game) HasResult() bool { return g.result != nil }

// Result returns the recorded result, or (0, false) if the game is ongoing.
func (g *Game) Result() (GameResult, bool) {
	if g.result == nil {
		return 0, false
	}
	return *g.result, true
}

// LastMove returns the most recently played move, or false if none has
// been played yet.
func (g *Game) LastMove() (shogi.Move, bool) {
	if len(g.moves) == 0 {
		return shogi.Move{}, false
	}
	return g.moves[len(g.moves)-1], true
}

// SetResult records r as the game's outcome. The first call wins: once a
// result is set, later calls are no-ops.
func (g *Game) SetResult(r GameResult) {
	if g.result == nil {
		g.result = &r
		logw.Infof(g.ctx, "Game result: %v (%v)", r.JapanStr(), r.Description())
	}
}

// Position returns the current position.
func (g *Game) Position() *shogi.Position { return g.pos }

// Moves returns the moves played so far.
func (g *Game) Moves() []shogi.Move { return g.moves }

// StartPos returns the starting SFEN given to NewGame, or nil if none was
// given (the game then started from the standard initial position).
func (g *Game) StartPos() *string { return g.startPos }

// MoveNoToSideToMove returns which side was to move at moveNo, extrapolating
// from the game's starting side and move number (they strictly alternate).
// It errors if moveNo precedes the game's start.
func (g *Game) MoveNoToSideToMove(moveNo int) (shogi.Side, error) {
	if moveNo < g.startMoveNo {
		return 0, fmt.Errorf("shogigame: move number %d is too small", moveNo)
	}
	if (moveNo-g.startMoveNo)&1 == 0 {
		return g.startSideToMove, nil
	}
	return g.startSideToMove.Opponent(), nil
}

// Adjourn closes out a game with no recorded result and no legal reply left
// for the side to move by declaring Checkmate.
func (g *Game) Adjourn() {
	if g.result == nil && !g.pos.HasLegalMove() {
		g.SetResult(Checkmate)
	}
}

// insertSfen records the just-reached position's signature and runs
// automatic end-of-game detection: four occurrences of the same signature
// is a repetition, or -- if every intervening occurrence of the side now to
// move was in check -- a win by perpetual check against that side. Absent a
// result, reaching the entering-king impasse threshold out of check ends
// the game too.
func (g *Game) insertSfen() {
	g.positions = nil
	if g.disableAutoDetect {
		return
	}
	sfen := g.pos.Sfen(false)
	occurrences := append(g.repetitions[sfen], len(g.checks))
	g.repetitions[sfen] = occurrences
	check := g.pos.IsCheck()
	g.checks = append(g.checks, check)
	if len(occurrences) >= 2 {
		logw.Debugf(g.ctx, "Position '%v' repeated %v times on moves %v", sfen, len(occurrences), occurrences)
	}
	if len(occurrences) >= 4 {
		u, v := occurrences[0], occurrences[len(occurrences)-1]
		if check && allChecksAt(g.checks, u, v, 2) {
			g.SetResult(IllegalPrecedingMove)
		} else {
			g.SetResult(Repetition)
		}
	}
	if !check && g.pos.FesaImpassePoints() {
		g.SetResult(EnteringKing)
	}
}

// allChecksAt reports whether checks[u], checks[u+step], ... up to but not
// including v are all true.
func allChecksAt(checks []bool, u, v, step int) bool {
	for i := u; i < v; i += step {
		if !checks[i] {
			return false
		}
	}
	return true
}

// AppendCommentBeforeMove records s as commentary attached before the move
// that will carry the given move number.
func (g *Game) AppendCommentBeforeMove(moveNo int, s string) {
	g.comments[moveNo] = append(g.comments[moveNo], s)
}

// CommentsBeforeMove returns the commentary recorded for moveNo, if any.
func (g *Game) CommentsBeforeMove(moveNo int) []string { return g.comments[moveNo] }

// DoMove plays m. An illegal move does not panic or return an error: it
// instead records an IllegalMove result, matching a recorded game whose
// loser's final move broke a rule.
func (g *Game) DoMove(m shogi.Move) {
	if _, err := g.pos.DoMove(&m); err != nil {
		g.SetResult(IllegalMove)
		return
	}
	g.moves = append(g.moves, m)
	g.insertSfen()
}

// DoUsiMove parses and plays a USI move token, or records a Resignation if
// the token is the literal "resign".
func (g *Game) DoUsiMove(usiMove string) error {
	if usiMove == "resign" {
		g.SetResult(Resignation)
		return nil
	}
	m, err := g.pos.ParseUsiMove(usiMove)
	if err != nil {
		return err
	}
	g.DoMove(m)
	return nil
}

// UsiPositionCommand renders the game so far as a USI "position" command.
func (g *Game) UsiPositionCommand() string {
	var sb strings.Builder
	sb.WriteString("position ")
	if g.startPos == nil {
		sb.WriteString("startpos")
	} else {
		sb.WriteString("sfen ")
		sb.WriteString(*g.startPos)
	}
	if len(g.moves) > 0 {
		sb.WriteString(" moves")
		for _, m := range g.moves {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// GetTag returns the value of tag key, or false if unset.
func (g *Game) GetTag(key string) (string, bool) {
	v, ok := g.tags[key]
	return v, ok
}

// SetTag sets tag key to value.
func (g *Game) SetTag(key, value string) { g.tags[key] = value }

// GetRowValuesFromTags returns the tag values named by keys, in order, with
// "" standing in for any tag that is unset.
func (g *Game) GetRowValuesFromTags(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = g.tags[k]
	}
	return out
}

// PlayerWithRating renders side's player tag, appended with its rating in
// parentheses when one is on record.
func (g *Game) PlayerWithRating(side shogi.Side) (string, bool) {
	name, ok := g.tags[side.String()]
	if !ok {
		return "", false
	}
	if rating, ok := g.ratings[side.String()]; ok {
		return fmt.Sprintf("%s(%d)", name, rating), true
	}
	return name, true
}

// SentePoints returns the game result's point delta from sente's
// perspective: side-to-move points are negated when gote is to move at the
// moment the result took effect.
func (g *Game) SentePoints() (int, bool) {
	if g.result == nil {
		return 0, false
	}
	p, ok := g.result.SideToMovePoints()
	if !ok {
		return 0, false
	}
	if g.pos.SideToMove() == shogi.Gote {
		p = -p
	}
	return p, true
}

// TextResult renders the game outcome as a PGN-style "1-0"/"0-1"/"1/2"
// string.
func (g *Game) TextResult() (string, bool) {
	p, ok := g.SentePoints()
	if !ok {
		return "", false
	}
	switch {
	case p > 0:
		return "1-0", true
	case p < 0:
		return "0-1", true
	default:
		return "1/2", true
	}
}

// Positions returns a map of move number to SFEN, covering the starting
// position and every position reached after a move, computed once and
// cached until the next move is played.
func (g *Game) Positions() (map[int]string, error) {
	if g.positions != nil {
		return g.positions, nil
	}
	sfen := shogi.InitialSFEN
	if g.startPos != nil {
		sfen = *g.startPos
	}
	pos, err := shogi.NewPosition(sfen)
	if err != nil {
		return nil, err
	}
	d := map[int]string{pos.MoveNo(): pos.Sfen(true)}
	for _, m := range g.moves {
		mv := m
		if _, err := pos.DoMove(&mv); err != nil {
			return nil, err
		}
		d[pos.MoveNo()] = pos.Sfen(true)
	}
	g.positions = d
	return d, nil
}

// ParsePlayerName sets tag key to s, splitting off a trailing "(<rating>)"
// suffix and recording it as key's rating when present.
func (g *Game) ParsePlayerName(s, key string) {
	if strings.HasSuffix(s, ")") {
		if i := strings.LastIndexByte(s, '('); i >= 0 {
			t := s[i+1 : len(s)-1]
			if rating, err := strconv.Atoi(t); err == nil && t != "" {
				g.SetTag(key, s[:i])
				g.ratings[key] = rating
				return
			}
		}
	}
	g.SetTag(key, s)
}

// SetRatings looks up each side's player tag in d and, if found, records
// the corresponding rating.
func (g *Game) SetRatings(d map[string]int) {
	for _, side := range []shogi.Side{shogi.Sente, shogi.Gote} {
		name, ok := g.tags[side.String()]
		if !ok {
			continue
		}
		if rating, ok := d[name]; ok {
			g.ratings[side.String()] = rating
		}
	}
}

// TotalTime returns the combined clock total, in whole seconds, of the last
// timed move made by each side, or false if either side never recorded a
// cumulative time.
func (g *Game) TotalTime() (int, bool) {
	var senteTime, goteTime *float64
	for i := len(g.moves) - 1; i >= 0; i-- {
		m := g.moves[i]
		if m.CumTime == nil {
			continue
		}
		secs := m.CumTime.Seconds()
		if m.ToPiece > 0 {
			if senteTime == nil {
				senteTime = &secs
			}
		} else {
			if goteTime == nil {
				goteTime = &secs
			}
		}
		if senteTime != nil && goteTime != nil {
			return int(*senteTime + *goteTime + 0.5), true
		}
	}
	return 0, false
}

// PlayerStats summarizes playerName's performance in a finished, rated game
// it took part in: false if the game lacks a result, ratings, or
// playerName is not one of the two tagged players.
type PlayerStats struct {
	Side       string
	Opponent   string
	Points     int
	Rating     int
	ORating    int
	Hands      int
	Date       string
	TimeControl string
	Duration   int
}

func (g *Game) PlayerStats(playerName string) (PlayerStats, bool) {
	points, ok := g.SentePoints()
	if !ok {
		return PlayerStats{}, false
	}
	var side, oside string
	switch playerName {
	case g.tags["sente"]:
		side, oside = "sente", "gote"
	case g.tags["gote"]:
		side, oside = "gote", "sente"
		points = -points
	default:
		return PlayerStats{}, false
	}
	opponent, ok := g.tags[oside]
	if !ok {
		return PlayerStats{}, false
	}
	rating, ok := g.ratings[side]
	if !ok {
		return PlayerStats{}, false
	}
	orating, ok := g.ratings[oside]
	if !ok {
		return PlayerStats{}, false
	}
	duration, _ := g.TotalTime()
	return PlayerStats{
		Side:        side,
		Opponent:    opponent,
		Points:      points,
		Rating:      rating,
		ORating:     orating,
		Hands:       len(g.moves),
		Date:        g.tags["start_date"],
		TimeControl: g.tags["time_control"],
		Duration:    duration,
	}, true
}

// DropZeroTimes clears every move's Time/CumTime fields, but only if every
// move in the game already carries a zero or absent time -- it never
// discards genuine clock data.
func (g *Game) DropZeroTimes() {
	for _, m := range g.moves {
		if m.Time != nil && *m.Time != 0 {
			return
		}
	}
	for i := range g.moves {
		g.moves[i].Time = nil
		g.moves[i].CumTime = nil
	}
}
