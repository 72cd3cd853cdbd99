// Package shogikif reads KIF-format game records: Shift-JIS or UTF-8 text,
// header tags, kanji move notation, and the terminal result line.
package shogikif

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
)

// DecodeKIF returns data as a UTF-8 string, stripping a leading UTF-8 BOM
// and transcoding from Shift-JIS when the bytes are not already valid
// UTF-8 -- most KIF files found in the wild predate the UTF-8 convention.
func DecodeKIF(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	r := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("shogikif: shift-jis decode: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("shogikif: decoded text is not valid UTF-8")
	}
	return string(decoded), nil
}

var (
	// A header line like "先手：羽生善治(1850)" or "開始日時：2020/01/01 10:00:00".
	headerLineRe = regexp.MustCompile(`^([^：:]+)[：:](.*)$`)

	// A move line: move number, move text, and an optional "(used/total)"
	// clock annotation, e.g. "   1 ７六歩(77)   ( 0:03/00:00:03)".
	moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(\S+)(?:\s+\(\s*([\d:]+)\s*/\s*([\d:]+)\s*\))?\s*$`)
)

var headerTagKeys = map[string]string{
	"先手":   "sente",
	"下手":   "sente",
	"後手":   "gote",
	"上手":   "gote",
	"開始日時": "start_date",
	"終了日時": "end_date",
	"棋戦":   "event",
	"戦型":   "opening_label",
	"持ち時間": "time_control",
	"場所":   "site",
}

// ParseMoveToken parses a single KIF move token (without its leading move
// number or trailing clock annotation) against sideToMove, resolving a
// leading "同　" (same square) against prevTo. It does not validate the
// move against a board: the caller is expected to run it through
// Position.DoMove or Game.DoMove.
func ParseMoveToken(token string, sideToMove shogi.Side, prevTo *shogi.Cell) (shogi.Move, error) {
	runes := []rune(strings.TrimSpace(token))
	i := 0
	next := func() (rune, bool) {
		if i >= len(runes) {
			return 0, false
		}
		r := runes[i]
		i++
		return r, true
	}

	var toCell shogi.Cell
	r, ok := next()
	if !ok {
		return shogi.Move{}, fmt.Errorf("shogikif: empty move token")
	}
	if r == '同' {
		sp, ok := next()
		if !ok || (sp != '　' && sp != ' ') {
			return shogi.Move{}, fmt.Errorf("shogikif: expected wide space after 同 in %q", token)
		}
		if prevTo == nil {
			return shogi.Move{}, fmt.Errorf("shogikif: 同 with no previous destination")
		}
		toCell = *prevTo
	} else {
		rowRune, ok := next()
		if !ok {
			return shogi.Move{}, fmt.Errorf("shogikif: truncated destination in %q", token)
		}
		cell, err := shogi.KifuParse(r, rowRune)
		if err != nil {
			return shogi.Move{}, fmt.Errorf("shogikif: %w in %q", err, token)
		}
		toCell = cell
	}

	pieceRune, ok := next()
	if !ok {
		return shogi.Move{}, fmt.Errorf("shogikif: missing piece in %q", token)
	}
	mag, ok := shogi.PieceFromKifuChar(pieceRune)
	if !ok {
		return shogi.Move{}, fmt.Errorf("shogikif: unknown piece glyph %q in %q", pieceRune, token)
	}

	promoted := false
	t, ok := next()
	if ok && t == '成' {
		promoted = true
		t, ok = next()
	}

	signedMag := mag
	if sideToMove == shogi.Gote {
		signedMag = -mag
	}

	if ok && t == '打' {
		if promoted || i != len(runes) {
			return shogi.Move{}, fmt.Errorf("shogikif: malformed drop in %q", token)
		}
		return shogi.Move{ToPiece: signedMag, ToCell: toCell}, nil
	}
	if !ok || t != '(' {
		return shogi.Move{}, fmt.Errorf("shogikif: expected '(' or '打' in %q", token)
	}
	colR, ok := next()
	if !ok || colR < '1' || colR > '9' {
		return shogi.Move{}, fmt.Errorf("shogikif: bad from-column in %q", token)
	}
	rowR, ok := next()
	if !ok || rowR < '1' || rowR > '9' {
		return shogi.Move{}, fmt.Errorf("shogikif: bad from-row in %q", token)
	}
	closeR, ok := next()
	if !ok || closeR != ')' || i != len(runes) {
		return shogi.Move{}, fmt.Errorf("shogikif: malformed from-cell in %q", token)
	}
	fromCell := shogi.NewCell(int(rowR-'1'), int(colR-'1'))

	toMag := mag
	if promoted {
		toMag = mag.Promote()
	}
	toPiece := toMag
	if sideToMove == shogi.Gote {
		toPiece = -toMag
	}
	fp := signedMag
	fc := fromCell
	return shogi.Move{FromCell: &fc, FromPiece: &fp, ToCell: toCell, ToPiece: toPiece}, nil
}

// parseClock parses a "[h:]mm:ss" clock field into a duration.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("shogikif: bad clock field %q", s)
	}
	var nums [3]int
	off := 3 - len(parts)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("shogikif: bad clock field %q: %w", s, err)
		}
		nums[off+i] = v
	}
	d := time.Duration(nums[0])*time.Hour + time.Duration(nums[1])*time.Minute + time.Duration(nums[2])*time.Second
	return d, nil
}

// ParseKIF reads a full KIF game record: header tags (player names with
// optional rating suffix, dates, event/site), the move list, and the
// terminal result line, returning an assembled *shogigame.Game.
func ParseKIF(ctx context.Context, text string) (*shogigame.Game, error) {
	g, err := shogigame.NewGame(ctx, nil, false)
	if err != nil {
		return nil, err
	}

	var prevTo *shogi.Cell
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if m := headerLineRe.FindStringSubmatch(trimmed); m != nil && !moveLineRe.MatchString(trimmed) {
			key, ok := headerTagKeys[strings.TrimSpace(m[1])]
			if ok {
				value := strings.TrimSpace(m[2])
				if key == "sente" || key == "gote" {
					g.ParsePlayerName(value, key)
				} else {
					g.SetTag(key, value)
				}
				continue
			}
		}
		mm := moveLineRe.FindStringSubmatch(trimmed)
		if mm == nil {
			continue
		}
		moveText := mm[2]
		if r, ok := shogigame.GameResultByJP(moveText); ok {
			g.SetResult(r)
			break
		}
		side := g.Position().SideToMove()
		move, err := ParseMoveToken(moveText, side, prevTo)
		if err != nil {
			return nil, fmt.Errorf("shogikif: line %d: %w", lineNo+1, err)
		}
		if mm[3] != "" {
			used, err := parseClock(mm[3])
			if err == nil {
				move.Time = &used
			}
		}
		if mm[4] != "" {
			total, err := parseClock(mm[4])
			if err == nil {
				move.CumTime = &total
			}
		}
		g.DoMove(move)
		if g.HasResult() {
			break
		}
		tc := move.ToCell
		prevTo = &tc
	}
	return g, nil
}
