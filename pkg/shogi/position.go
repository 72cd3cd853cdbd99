package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// InitialSFEN is the standard starting position.
const InitialSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

func pieceSet(ps ...Piece) map[Piece]bool {
	m := make(map[Piece]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}

func union(sets ...map[Piece]bool) map[Piece]bool {
	m := make(map[Piece]bool)
	for _, s := range sets {
		for p := range s {
			m[p] = true
		}
	}
	return m
}

var (
	goldSet   = pieceSet(Gold, Tokin, PromLance, PromKnight, PromSilver)
	bishopSet = pieceSet(Bishop, Horse)
	rookSet   = pieceSet(Rook, Dragon)
	generalSet = union(goldSet, pieceSet(Silver))
	nearSet    = pieceSet(King, Horse, Dragon)

	attackUpFarSet       = union(pieceSet(Lance), rookSet)
	attackUpNearSet      = union(attackUpFarSet, generalSet, pieceSet(Pawn))
	attackDiagUpNearSet  = union(bishopSet, generalSet)
	attackRookNearSet    = union(rookSet, goldSet)
	attackBishopNearSet  = union(bishopSet, pieceSet(Silver))
)

// InvalidSfenError reports an SFEN that failed to parse or violated one of
// Position's construction invariants.
type InvalidSfenError struct {
	Reason string
}

func (e *InvalidSfenError) Error() string { return "shogi: invalid sfen: " + e.Reason }

// InvalidMoveSyntaxError reports a USI/KIF move token that could not be
// parsed.
type InvalidMoveSyntaxError struct {
	Reason string
}

func (e *InvalidMoveSyntaxError) Error() string { return "shogi: invalid move syntax: " + e.Reason }

// Hand counts pieces held off-board, indexed directly by unpromoted
// magnitude (1..7); index 0 is unused.
type Hand [8]int

// Count returns the number of p (any magnitude; promoted forms are
// unpromoted first) held in hand.
func (h Hand) Count(p Piece) int { return h[p.Unpromote().Magnitude()] }

// Position owns an 81-cell board, both hands, the side to move, and a
// 1-based move number.
type Position struct {
	board      [numCells]Piece
	sentePieces Hand
	gotePieces  Hand
	sideToMove  Side
	moveNo      int
}

// NewPosition parses sfen and validates Position's invariants: exactly one
// king per side, piece-count totals intact, and the side that just moved
// not left in check.
func NewPosition(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) != 4 {
		return nil, &InvalidSfenError{Reason: fmt.Sprintf("expected 4 fields, got %d", len(fields))}
	}
	p := &Position{}

	moveNo, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, &InvalidSfenError{Reason: "move number: " + err.Error()}
	}
	p.moveNo = moveNo

	switch fields[1] {
	case "b":
		p.sideToMove = Sente
	case "w":
		p.sideToMove = Gote
	default:
		return nil, &InvalidSfenError{Reason: "unknown side to move " + fields[1]}
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 9 {
		return nil, &InvalidSfenError{Reason: fmt.Sprintf("expected 9 ranks, got %d", len(ranks))}
	}
	for row, rank := range ranks {
		col := 9
		promoted := false
		for _, c := range rank {
			switch {
			case c >= '0' && c <= '9':
				if promoted {
					return nil, &InvalidSfenError{Reason: "free cell can't be promoted"}
				}
				for i := 0; i < int(c-'0'); i++ {
					col--
					if col < 0 {
						return nil, &InvalidSfenError{Reason: fmt.Sprintf("too much data in row %d", row+1)}
					}
					p.board[9*row+col] = Free
				}
			case c == '+':
				if promoted {
					return nil, &InvalidSfenError{Reason: "double plus"}
				}
				promoted = true
			case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
				col--
				if col < 0 {
					return nil, &InvalidSfenError{Reason: fmt.Sprintf("too much data in row %d", row+1)}
				}
				mag := PieceFromASCII(byte(c))
				if mag == Free {
					return nil, &InvalidSfenError{Reason: fmt.Sprintf("unknown piece %q", c)}
				}
				if promoted {
					mag = mag.Promote()
					promoted = false
				}
				if c >= 'a' && c <= 'z' {
					p.board[9*row+col] = -mag
				} else {
					p.board[9*row+col] = mag
				}
			default:
				return nil, &InvalidSfenError{Reason: fmt.Sprintf("illegal character %q in board", c)}
			}
		}
		if col != 0 {
			return nil, &InvalidSfenError{Reason: fmt.Sprintf("not enough data in row %d", row+1)}
		}
	}

	if fields[2] != "-" {
		t := 0
		for _, c := range fields[2] {
			switch {
			case c >= '0' && c <= '9':
				t = 10*t + int(c-'0')
			case c >= 'a' && c <= 'z':
				mag := PieceFromASCII(byte(c))
				if mag == Free {
					return nil, &InvalidSfenError{Reason: fmt.Sprintf("unknown hand piece %q", c)}
				}
				if t == 0 {
					t = 1
				}
				p.gotePieces[mag] += t
				t = 0
			case c >= 'A' && c <= 'Z':
				mag := PieceFromASCII(byte(c))
				if mag == Free {
					return nil, &InvalidSfenError{Reason: fmt.Sprintf("unknown hand piece %q", c)}
				}
				if t == 0 {
					t = 1
				}
				p.sentePieces[mag] += t
				t = 0
			default:
				return nil, &InvalidSfenError{Reason: "piece in hand should be alphabetic"}
			}
		}
		if t != 0 {
			return nil, &InvalidSfenError{Reason: "trailing count in hand without a piece letter"}
		}
	}

	if err := p.validateInvariants(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Position) validateInvariants() error {
	var senteKings, goteKings int
	var boardPawns, boardLances, boardKnights, boardSilvers, boardGolds, boardBishops, boardRooks [2]int
	for c := Cell(0); c < numCells; c++ {
		pc := p.board[c]
		if pc == Free {
			continue
		}
		if pc.Magnitude() == King {
			if pc > 0 {
				senteKings++
			} else {
				goteKings++
			}
			continue
		}
		idx := 0
		if pc < 0 {
			idx = 1
		}
		switch pc.Unpromote().Magnitude() {
		case Pawn:
			boardPawns[idx]++
		case Lance:
			boardLances[idx]++
		case Knight:
			boardKnights[idx]++
		case Silver:
			boardSilvers[idx]++
		case Gold:
			boardGolds[idx]++
		case Bishop:
			boardBishops[idx]++
		case Rook:
			boardRooks[idx]++
		}
	}
	if senteKings != 1 {
		return &InvalidSfenError{Reason: fmt.Sprintf("expected exactly one sente king, found %d", senteKings)}
	}
	if goteKings != 1 {
		return &InvalidSfenError{Reason: fmt.Sprintf("expected exactly one gote king, found %d", goteKings)}
	}
	total := func(mag Piece) int {
		return boardCountFor(mag, boardPawns, boardLances, boardKnights, boardSilvers, boardGolds, boardBishops, boardRooks) +
			p.sentePieces[mag] + p.gotePieces[mag]
	}
	checks := []struct {
		mag  Piece
		want int
	}{
		{Pawn, 18}, {Lance, 4}, {Knight, 4}, {Silver, 4}, {Gold, 4}, {Bishop, 2}, {Rook, 2},
	}
	for _, chk := range checks {
		if got := total(chk.mag); got != chk.want {
			return &InvalidSfenError{Reason: fmt.Sprintf("piece count for magnitude %d: want %d, got %d", chk.mag, chk.want, got)}
		}
	}
	if p.kingUnderCheck(p.sideToMove.Opponent()) {
		return &InvalidSfenError{Reason: "the side that just moved is in check"}
	}
	return nil
}

func boardCountFor(mag Piece, pawns, lances, knights, silvers, golds, bishops, rooks [2]int) int {
	switch mag {
	case Pawn:
		return pawns[0] + pawns[1]
	case Lance:
		return lances[0] + lances[1]
	case Knight:
		return knights[0] + knights[1]
	case Silver:
		return silvers[0] + silvers[1]
	case Gold:
		return golds[0] + golds[1]
	case Bishop:
		return bishops[0] + bishops[1]
	case Rook:
		return rooks[0] + rooks[1]
	}
	return 0
}

// Sfen serializes the position. With includeMoveNo false the trailing move
// number field is omitted -- used to compute the repetition signature.
func (p *Position) Sfen(includeMoveNo bool) string {
	var sb strings.Builder
	for row := 0; row < 9; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		run := 0
		for col := 8; col >= 0; col-- {
			c := p.board[9*row+col]
			if c == Free {
				run++
				continue
			}
			if run > 0 {
				sb.WriteString(strconv.Itoa(run))
				run = 0
			}
			sb.WriteString(c.ToASCII())
		}
		if run > 0 {
			sb.WriteString(strconv.Itoa(run))
		}
	}
	sb.WriteByte(' ')
	if p.sideToMove == Sente {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	sb.WriteByte(' ')

	hands := ""
	for mag := Rook; mag >= Pawn; mag-- {
		if t := p.sentePieces[mag]; t > 0 {
			if t > 1 {
				hands += strconv.Itoa(t)
			}
			hands += strings.ToUpper(string(asciiPieces[mag-1]))
		}
	}
	for mag := Rook; mag >= Pawn; mag-- {
		if t := p.gotePieces[mag]; t > 0 {
			if t > 1 {
				hands += strconv.Itoa(t)
			}
			hands += string(asciiPieces[mag-1])
		}
	}
	if hands == "" {
		sb.WriteByte('-')
	} else {
		sb.WriteString(hands)
	}
	if includeMoveNo {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(p.moveNo))
	}
	return sb.String()
}

// SideToMove returns the side to move.
func (p *Position) SideToMove() Side { return p.sideToMove }

// MoveNo returns the 1-based move number.
func (p *Position) MoveNo() int { return p.moveNo }

// At returns the piece on cell c.
func (p *Position) At(c Cell) Piece { return p.board[c] }

// HandFor returns the hand of side.
func (p *Position) HandFor(side Side) Hand {
	if side == Sente {
		return p.sentePieces
	}
	return p.gotePieces
}

// Clone returns an independent deep copy, used for pseudo-legal move trial.
func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}

func (p *Position) findKing(side Side) (Cell, bool) {
	want := Piece(King)
	if side == Gote {
		want = -King
	}
	for c := Cell(0); c < numCells; c++ {
		if p.board[c] == want {
			return c, true
		}
	}
	return 0, false
}

// scanBoard rays from (r,c) in direction (dr,dc), one step per iteration
// from the perspective of `side`. The ray stops at the first occupied cell:
// that cell is an attacker iff it holds a piece owned by `side` whose
// magnitude is in `far` (beyond the first step) or in `near` ∪ nearSet (at
// the first step).
func (p *Position) scanBoard(side Side, r, c, dr, dc int, far, near map[Piece]bool) bool {
	k := 0
	for {
		k++
		r += dr
		if r < 0 || r > 8 {
			return false
		}
		c += dc
		if c < 0 || c > 8 {
			return false
		}
		pc := p.board[9*r+c]
		if pc == Free {
			continue
		}
		if pc.Side() == side {
			mag := pc.Magnitude()
			if k > 1 {
				return far[mag]
			}
			return nearSet[mag] || near[mag]
		}
		return false
	}
}

// kingUnderCheck reports whether side's king is attacked.
func (p *Position) kingUnderCheck(side Side) bool {
	kc, ok := p.findKing(side)
	if !ok {
		return false
	}
	s := int(side)
	rk, ck := kc.Row(), kc.Col()
	enemy := side.Opponent()

	if p.scanBoard(enemy, rk, ck, -s, 0, attackUpFarSet, attackUpNearSet) ||
		p.scanBoard(enemy, rk, ck, -s, -1, bishopSet, attackDiagUpNearSet) ||
		p.scanBoard(enemy, rk, ck, -s, 1, bishopSet, attackDiagUpNearSet) ||
		p.scanBoard(enemy, rk, ck, 0, -1, rookSet, attackRookNearSet) ||
		p.scanBoard(enemy, rk, ck, 0, 1, rookSet, attackRookNearSet) ||
		p.scanBoard(enemy, rk, ck, s, 0, rookSet, attackRookNearSet) ||
		p.scanBoard(enemy, rk, ck, s, -1, bishopSet, attackBishopNearSet) ||
		p.scanBoard(enemy, rk, ck, s, 1, bishopSet, attackBishopNearSet) {
		return true
	}
	row := rk - 2*s
	if row >= 0 && row < 9 {
		u := 9*row + ck
		knight := Piece(Knight)
		if side == Sente {
			knight = -Knight
		}
		if ck > 0 && p.board[u-1] == knight {
			return true
		}
		if ck < 8 && p.board[u+1] == knight {
			return true
		}
	}
	return false
}

// IsLegal reports whether the side that just moved is not in check.
func (p *Position) IsLegal() bool {
	return !p.kingUnderCheck(p.sideToMove.Opponent())
}

// IsCheck reports whether the side to move is in check.
func (p *Position) IsCheck() bool {
	return p.kingUnderCheck(p.sideToMove)
}

func (p *Position) validateMove(m *Move) error {
	if int(p.sideToMove)*int(m.ToPiece) <= 0 {
		return fmt.Errorf("side to move does not match move's to_piece sign")
	}
	if m.IsDrop() {
		if p.board[m.ToCell] != Free {
			return fmt.Errorf("drop piece on occupied cell")
		}
		hand := p.sentePieces
		if m.ToPiece < 0 {
			hand = p.gotePieces
		}
		if hand[m.ToPiece.Magnitude()] <= 0 {
			return fmt.Errorf("dropping piece not in hand")
		}
		if !CanDrop(m.ToCell, m.ToPiece) {
			return fmt.Errorf("piece cannot be dropped on cell %v", m.ToCell)
		}
		if m.ToPiece.Magnitude() == Pawn {
			col := m.ToCell.Col()
			for row := 0; row < 9; row++ {
				if p.board[9*row+col] == m.ToPiece {
					return &NifuError{}
				}
			}
		}
		return nil
	}
	if int(p.sideToMove)*int(*m.FromPiece) <= 0 {
		return fmt.Errorf("side to move does not match move's from_piece sign")
	}
	taken := p.board[m.ToCell]
	if int(taken)*int(p.sideToMove) > 0 {
		return fmt.Errorf("player captures own piece")
	}
	return nil
}

// DoMove validates and applies m, returning the captured piece (if any).
// On failure the position is unchanged. A move that leaves the mover's own
// king in check is rolled back before UnresolvedCheckError is returned.
func (p *Position) DoMove(m *Move) (*UndoMove, error) {
	if m.Legal == LegalityIllegal {
		return nil, &IllegalMoveError{Reason: "previously found illegal"}
	}
	if err := p.validateMove(m); err != nil {
		m.Legal = LegalityIllegal
		if _, ok := err.(*NifuError); ok {
			return nil, err
		}
		return nil, &IllegalMoveError{Reason: err.Error()}
	}

	var undo *UndoMove
	if m.IsDrop() {
		p.board[m.ToCell] = m.ToPiece
		if m.ToPiece > 0 {
			p.sentePieces[m.ToPiece.Magnitude()]--
		} else {
			p.gotePieces[m.ToPiece.Magnitude()]--
		}
	} else {
		taken := p.board[m.ToCell]
		if taken != Free {
			undo = &UndoMove{TakenPiece: taken, HasTaken: true}
			if taken.Magnitude() != King {
				unpromoted := taken.Unpromote().Magnitude()
				if taken < 0 {
					p.sentePieces[unpromoted]++
				} else {
					p.gotePieces[unpromoted]++
				}
			}
		}
		p.board[*m.FromCell] = Free
		p.board[m.ToCell] = m.ToPiece
	}
	p.sideToMove = p.sideToMove.Opponent()
	p.moveNo++

	if m.Legal == LegalityUnknown && !p.IsLegal() {
		m.Legal = LegalityIllegal
		p.undoMoveUnchecked(m, undo)
		return nil, &UnresolvedCheckError{}
	}
	m.Legal = LegalityLegal
	return undo, nil
}

// UndoMove exactly reverses a prior DoMove.
func (p *Position) UndoMove(m *Move, u *UndoMove) {
	p.undoMoveUnchecked(m, u)
}

func (p *Position) undoMoveUnchecked(m *Move, u *UndoMove) {
	p.sideToMove = p.sideToMove.Opponent()
	p.moveNo--
	if m.IsDrop() {
		if m.ToPiece > 0 {
			p.sentePieces[m.ToPiece.Magnitude()]++
		} else {
			p.gotePieces[m.ToPiece.Magnitude()]++
		}
		p.board[m.ToCell] = Free
		return
	}
	taken := Free
	if u != nil && u.HasTaken {
		taken = u.TakenPiece
	}
	if taken != Free && taken.Magnitude() != King {
		unpromoted := taken.Unpromote().Magnitude()
		if taken < 0 {
			p.sentePieces[unpromoted]--
		} else {
			p.gotePieces[unpromoted]--
		}
	}
	p.board[m.ToCell] = taken
	p.board[*m.FromCell] = *m.FromPiece
}

// ParseUsiMove lexes a USI move token ("7g7f", "P*5e", "2b3a+") against the
// current position, producing a Move with from_piece/from_cell filled in
// from the board.
func (p *Position) ParseUsiMove(s string) (Move, error) {
	if len(s) < 4 {
		return Move{}, &InvalidMoveSyntaxError{Reason: fmt.Sprintf("too short: %q", s)}
	}
	if s == "resign" {
		return Move{}, &InvalidMoveSyntaxError{Reason: "resign is not a board move"}
	}
	if s[1] == '*' {
		mag := PieceFromASCII(s[0])
		if mag == Free {
			return Move{}, &InvalidMoveSyntaxError{Reason: fmt.Sprintf("unknown drop piece %q", s[0])}
		}
		toCell, err := usiCellFromStr(s[2:])
		if err != nil {
			return Move{}, err
		}
		toPiece := mag
		if p.sideToMove == Gote {
			toPiece = -mag
		}
		return Move{ToPiece: toPiece, ToCell: toCell}, nil
	}
	if len(s) < 4 {
		return Move{}, &InvalidMoveSyntaxError{Reason: fmt.Sprintf("malformed move %q", s)}
	}
	fromCell, err := usiCellFromStr(s[0:2])
	if err != nil {
		return Move{}, err
	}
	toCell, err := usiCellFromStr(s[2:4])
	if err != nil {
		return Move{}, err
	}
	promote := len(s) == 5 && s[4] == '+'
	fromPiece := p.board[fromCell]
	if fromPiece == Free {
		return Move{}, &InvalidMoveSyntaxError{Reason: "from cell is empty"}
	}
	toPiece := fromPiece
	if promote {
		if !fromPiece.CanPromote() {
			return Move{}, &InvalidMoveSyntaxError{Reason: "piece cannot promote"}
		}
		toPiece = fromPiece.Promote()
	}
	fc := fromCell
	fp := fromPiece
	return Move{FromCell: &fc, FromPiece: &fp, ToCell: toCell, ToPiece: toPiece}, nil
}

func usiCellFromStr(s string) (Cell, error) {
	if len(s) != 2 {
		return 0, &InvalidMoveSyntaxError{Reason: fmt.Sprintf("bad cell %q", s)}
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, &InvalidMoveSyntaxError{Reason: fmt.Sprintf("bad file in %q", s)}
	}
	file := int(s[0] - '0')
	return UsiParse(file, s[1])
}

// pieceValue is the FESA-impasse material tally: majors count 5, everything
// else (except the king) counts 1.
func pieceValue(p Piece) int {
	switch p.Unpromote().Magnitude() {
	case Bishop, Rook:
		return 5
	default:
		return 1
	}
}

// FesaImpassePoints reports whether the side to move may declare entering-
// king impasse victory: its king sits in the opponent's promotion zone, at
// least 10 other pieces of that side also occupy that zone, and the point
// total (majors 5, others 1, hand included) reaches 28 for sente / 27 for
// gote.
func (p *Position) FesaImpassePoints() bool {
	side := p.sideToMove
	kc, ok := p.findKing(side)
	if !ok || !PromotionZone(kc, side) {
		return false
	}
	zoneCount := 0
	points := 0
	for c := Cell(0); c < numCells; c++ {
		pc := p.board[c]
		if pc == Free || pc.Side() != side {
			continue
		}
		if pc.Magnitude() == King {
			continue
		}
		if PromotionZone(c, side) {
			zoneCount++
		}
		points += pieceValue(pc)
	}
	hand := p.HandFor(side)
	for mag := Pawn; mag <= Rook; mag++ {
		if hand[mag] == 0 {
			continue
		}
		v := 1
		if mag == Bishop || mag == Rook {
			v = 5
		}
		points += v * hand[mag]
	}
	if zoneCount < 10 {
		return false
	}
	threshold := 27
	if side == Sente {
		threshold = 28
	}
	return points >= threshold
}

// PseudoLegalMoves generates a (not necessarily king-safe) candidate move
// list for the side to move: board moves for every piece of that side plus
// drops for every piece held in hand, consumed strictly linearly by
// HasLegalMove and abandoned on the first king-safe move found.
func (p *Position) PseudoLegalMoves() []Move {
	var moves []Move
	side := p.sideToMove
	sign := 1
	if side == Gote {
		sign = -1
	}

	for c := Cell(0); c < numCells; c++ {
		pc := p.board[c]
		if pc == Free || pc.Side() != side {
			continue
		}
		short, sliding := pc.MoveTable()
		row, col := c.Row(), c.Col()
		addTarget := func(tr, tc int) bool {
			if tr < 0 || tr > 8 || tc < 0 || tc > 8 {
				return false
			}
			target := NewCell(tr, tc)
			occ := p.board[target]
			if occ != Free && occ.Side() == side {
				return false
			}
			fc := c
			fp := pc
			canPromote := pc.CanPromote() && (PromotionZone(c, side) || PromotionZone(target, side))
			if canPromote {
				moves = append(moves, Move{FromCell: &fc, FromPiece: &fp, ToCell: target, ToPiece: fp.Promote()})
			}
			moves = append(moves, Move{FromCell: &fc, FromPiece: &fp, ToCell: target, ToPiece: pc})
			return occ == Free
		}
		for _, off := range short {
			addTarget(row+sign*off.DRow, col+sign*off.DCol)
		}
		for _, off := range sliding {
			tr, tc := row, col
			for {
				tr += sign * off.DRow
				tc += sign * off.DCol
				if !addTarget(tr, tc) {
					break
				}
			}
		}
	}

	hand := p.HandFor(side)
	for mag := Pawn; mag <= Rook; mag++ {
		if hand[mag] == 0 {
			continue
		}
		dropPiece := mag
		if side == Gote {
			dropPiece = -mag
		}
		for c := Cell(0); c < numCells; c++ {
			if p.board[c] != Free {
				continue
			}
			if !CanDrop(c, dropPiece) {
				continue
			}
			tc := c
			moves = append(moves, Move{ToCell: tc, ToPiece: dropPiece})
		}
	}
	return moves
}

// HasLegalMove reports whether the side to move has any legal reply. Used
// only for mate/stalemate detection, never for playing.
func (p *Position) HasLegalMove() bool {
	for _, m := range p.PseudoLegalMoves() {
		mv := m
		trial := p.Clone()
		if _, err := trial.DoMove(&mv); err == nil {
			return true
		}
	}
	return false
}

// WesternMoveStr renders m in disambiguated Western notation: piece letter,
// optional source cell when another same-type, same-side piece could also
// reach the destination, '-'/'x' for quiet/capture, destination cell, and
// '+'/'=' for promotion/decline.
func (p *Position) WesternMoveStr(m Move) string {
	mover := m.ToPiece
	if m.IsPromotion() {
		mover = *m.FromPiece
	}
	letter := strings.ToUpper(mover.Unpromote().ToASCII())
	if mover.IsPromoted() {
		letter = "+" + letter
	}

	disambiguation := ""
	if !m.IsDrop() {
		rivals := 0
		for c := Cell(0); c < numCells; c++ {
			if c == *m.FromCell {
				continue
			}
			pc := p.board[c]
			if pc != *m.FromPiece {
				continue
			}
			if p.reaches(c, m.ToCell) {
				rivals++
			}
		}
		if rivals > 0 {
			disambiguation = m.FromCell.DigitalStr()
		}
	}

	sep := "-"
	if p.board[m.ToCell] != Free {
		sep = "x"
	}
	suffix := ""
	if m.FromPiece != nil && (*m.FromPiece).CanPromote() && (PromotionZone(*m.FromCell, p.sideToMove) || PromotionZone(m.ToCell, p.sideToMove)) {
		if m.IsPromotion() {
			suffix = "+"
		} else {
			suffix = "="
		}
	}
	return letter + disambiguation + sep + m.ToCell.DigitalStr() + suffix
}

// reaches reports whether a piece at `from` could move to `to` in one step,
// ignoring whether the mover's king would end up in check.
func (p *Position) reaches(from, to Cell) bool {
	pc := p.board[from]
	side := pc.Side()
	sign := 1
	if side == Gote {
		sign = -1
	}
	short, sliding := pc.MoveTable()
	row, col := from.Row(), from.Col()
	for _, off := range short {
		tr, tc := row+sign*off.DRow, col+sign*off.DCol
		if tr < 0 || tr > 8 || tc < 0 || tc > 8 {
			continue
		}
		if NewCell(tr, tc) == to {
			return true
		}
	}
	for _, off := range sliding {
		tr, tc := row, col
		for {
			tr += sign * off.DRow
			tc += sign * off.DCol
			if tr < 0 || tr > 8 || tc < 0 || tc > 8 {
				break
			}
			cell := NewCell(tr, tc)
			if cell == to {
				return true
			}
			if p.board[cell] != Free {
				break
			}
		}
	}
	return false
}
