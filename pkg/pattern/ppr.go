package pattern

import (
	"github.com/antma/pyshogi-db/pkg/shogi"
)

// majorOpeningMagnitudes are the piece types whose capture disables that
// side's opening recognition for the rest of the game.
var majorOpeningMagnitudes = map[shogi.Piece]bool{
	shogi.Silver: true,
	shogi.Gold:   true,
	shogi.Lance:  true,
}

type moveDestKey struct {
	Piece shogi.Piece
	Cell  shogi.Cell
}

// PositionForPatternRecognition (PPR) wraps a shogi.Position with the
// extra incremental state the pattern DSL needs: pawn/king bitmaps,
// back-rank "never moved" tracking, capture history, and opening-phase
// flags. Every mutation goes through DoMove so this state never drifts
// out of sync with the board.
type PositionForPatternRecognition struct {
	pos *shogi.Position

	sentePawns, gotePawns CellMask
	senteKing, goteKing   shogi.Cell

	initialBack [2][9]shogi.Piece
	unmovable   [2][9]bool

	senteCaptures, goteCaptures CellMask

	movesDestination map[moveDestKey]bool

	senteOpening, goteOpening bool
	rooksExchange             bool

	countMoves map[shogi.Piece]int
	wasDrops   bool
	lastMove   *shogi.Move
	rookMoved  [2]bool

	patternsD map[string]bool
}

const (
	senteBackRow = 8
	goteBackRow  = 0
)

// NewPPR builds a PositionForPatternRecognition from an SFEN, the same way
// a fresh Position is built, with its derived state seeded from the
// starting board.
func NewPPR(sfen string) (*PositionForPatternRecognition, error) {
	pos, err := shogi.NewPosition(sfen)
	if err != nil {
		return nil, err
	}
	r := &PositionForPatternRecognition{
		pos:              pos,
		movesDestination: make(map[moveDestKey]bool),
		countMoves:       make(map[shogi.Piece]int),
		patternsD:        make(map[string]bool),
		senteOpening:     true,
		goteOpening:      true,
	}
	for f := 0; f < 9; f++ {
		r.initialBack[0][f] = pos.At(shogi.NewCell(senteBackRow, f))
		r.initialBack[1][f] = pos.At(shogi.NewCell(goteBackRow, f))
		r.unmovable[0][f] = true
		r.unmovable[1][f] = true
	}
	r.recomputeBoardDerived()
	return r, nil
}

// Position returns the underlying Position.
func (r *PositionForPatternRecognition) Position() *shogi.Position { return r.pos }

// PawnsMask returns side's pawn bitmap, mirrored onto sente's perspective
// when side is gote.
func (r *PositionForPatternRecognition) PawnsMask(side shogi.Side) CellMask {
	if side == shogi.Sente {
		return r.sentePawns
	}
	return r.gotePawns.Mirror()
}

// KingCell returns side's king cell, mirrored onto sente's perspective
// when side is gote.
func (r *PositionForPatternRecognition) KingCell(side shogi.Side) shogi.Cell {
	if side == shogi.Sente {
		return r.senteKing
	}
	return r.goteKing.SwapSide()
}

func mirrorFileMask(m uint16) uint16 {
	var out uint16
	for f := 0; f < 9; f++ {
		if m&(1<<uint(f)) != 0 {
			out |= 1 << uint(8-f)
		}
	}
	return out
}

// UnmovableMask returns a 9-bit mask over files (mirrored onto sente's
// perspective for gote): bit f is set iff the original back-rank piece at
// file f has never moved or been captured.
func (r *PositionForPatternRecognition) UnmovableMask(side shogi.Side) uint16 {
	idx := 0
	if side == shogi.Gote {
		idx = 1
	}
	var m uint16
	for f := 0; f < 9; f++ {
		if r.unmovable[idx][f] {
			m |= 1 << uint(f)
		}
	}
	if side == shogi.Gote {
		m = mirrorFileMask(m)
	}
	return m
}

// CapturesMask returns the cells where side has captured a piece,
// mirrored onto sente's perspective for gote.
func (r *PositionForPatternRecognition) CapturesMask(side shogi.Side) CellMask {
	if side == shogi.Sente {
		return r.senteCaptures
	}
	return r.goteCaptures.Mirror()
}

// IsOpening reports whether side's opening recognition is still active:
// cleared once one of its major opening pieces (silver, gold, lance) has
// been captured.
func (r *PositionForPatternRecognition) IsOpening(side shogi.Side) bool {
	if side == shogi.Sente {
		return r.senteOpening
	}
	return r.goteOpening
}

// RooksExchange reports whether both sides have held a rook in hand at the
// same time at some point in the game; once set, it stays set.
func (r *PositionForPatternRecognition) RooksExchange() bool { return r.rooksExchange }

// MoveCount returns how many times a piece of signed magnitude p has
// moved so far (drops and board moves alike).
func (r *PositionForPatternRecognition) MoveCount(p shogi.Piece) int { return r.countMoves[p] }

// WasDrops reports whether any drop has occurred yet.
func (r *PositionForPatternRecognition) WasDrops() bool { return r.wasDrops }

// LastMove returns the most recently applied move, or nil before the
// first move.
func (r *PositionForPatternRecognition) LastMove() *shogi.Move { return r.lastMove }

// NeverMovedTo reports whether piece p has never moved to cell c.
func (r *PositionForPatternRecognition) NeverMovedTo(p shogi.Piece, c shogi.Cell) bool {
	return !r.movesDestination[moveDestKey{Piece: p, Cell: c}]
}

// BasePatternResult looks up a previously recorded named base-pattern
// result for the current position.
func (r *PositionForPatternRecognition) BasePatternResult(name string) (bool, bool) {
	v, ok := r.patternsD[name]
	return v, ok
}

// SetBasePatternResult records a named base-pattern result for the
// current position, consulted by BASE_PATTERN references later in the
// same recognition pass.
func (r *PositionForPatternRecognition) SetBasePatternResult(name string, v bool) {
	r.patternsD[name] = v
}

// FirstRookMoveFile reports mover's own-perspective destination file (1-9,
// mirrored for gote) the first time mover's rook moves -- board move or
// drop alike, promotion included -- and false afterward. Call before
// DoMove, matching the position this check describes the move against.
func (r *PositionForPatternRecognition) FirstRookMoveFile(mover shogi.Side, m *shogi.Move) (int, bool) {
	idx := 0
	if mover == shogi.Gote {
		idx = 1
	}
	if r.rookMoved[idx] {
		return 0, false
	}
	if m.ToPiece.Unpromote().Magnitude() != shogi.Rook {
		return 0, false
	}
	r.rookMoved[idx] = true
	cell := m.ToCell
	if mover == shogi.Gote {
		cell = cell.SwapSide()
	}
	return cell.Col() + 1, true
}

// DoMove applies m to the underlying Position and then updates the derived
// fields above: the move history incrementally, the pawn/king/back-rank
// masks by a board rescan. On error nothing is updated.
func (r *PositionForPatternRecognition) DoMove(m *shogi.Move) (*shogi.UndoMove, error) {
	side := r.pos.SideToMove()
	var captured shogi.Piece
	if !m.IsDrop() {
		captured = r.pos.At(m.ToCell)
	}

	undo, err := r.pos.DoMove(m)
	if err != nil {
		return nil, err
	}

	r.patternsD = make(map[string]bool)
	r.lastMove = m
	if m.IsDrop() {
		r.wasDrops = true
	}

	movedMag := m.ToPiece
	if m.FromPiece != nil {
		movedMag = *m.FromPiece
	}
	r.countMoves[movedMag]++
	r.movesDestination[moveDestKey{Piece: m.ToPiece, Cell: m.ToCell}] = true

	if captured != shogi.Free {
		if side == shogi.Sente {
			r.senteCaptures = r.senteCaptures.Set(m.ToCell)
		} else {
			r.goteCaptures = r.goteCaptures.Set(m.ToCell)
		}
		if majorOpeningMagnitudes[captured.Unpromote().Magnitude()] {
			if captured.Side() == shogi.Sente {
				r.senteOpening = false
			} else {
				r.goteOpening = false
			}
		}
	}

	senteHand := r.pos.HandFor(shogi.Sente)
	goteHand := r.pos.HandFor(shogi.Gote)
	if senteHand[shogi.Rook] > 0 && goteHand[shogi.Rook] > 0 {
		r.rooksExchange = true
	}

	r.recomputeBoardDerived()
	return undo, nil
}

// UndoMove reverses a prior DoMove. Capture/opening/rook-exchange/move-count
// history is deliberately not rolled back: the pattern DSL only ever reads
// it while walking a game forward move by move.
func (r *PositionForPatternRecognition) UndoMove(m *shogi.Move, u *shogi.UndoMove) {
	r.pos.UndoMove(m, u)
	r.patternsD = make(map[string]bool)
	r.recomputeBoardDerived()
}

func (r *PositionForPatternRecognition) recomputeBoardDerived() {
	r.sentePawns = CellMask{}
	r.gotePawns = CellMask{}
	for c := shogi.Cell(0); c < 81; c++ {
		pc := r.pos.At(c)
		switch pc {
		case shogi.Pawn:
			r.sentePawns = r.sentePawns.Set(c)
		case -shogi.Pawn:
			r.gotePawns = r.gotePawns.Set(c)
		case shogi.King:
			r.senteKing = c
		case -shogi.King:
			r.goteKing = c
		}
	}
	for f := 0; f < 9; f++ {
		if r.unmovable[0][f] && r.pos.At(shogi.NewCell(senteBackRow, f)) != r.initialBack[0][f] {
			r.unmovable[0][f] = false
		}
		if r.unmovable[1][f] && r.pos.At(shogi.NewCell(goteBackRow, f)) != r.initialBack[1][f] {
			r.unmovable[1][f] = false
		}
	}
}
