package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/antma/pyshogi-db/pkg/castles"
	"github.com/antma/pyshogi-db/pkg/openings"
	"github.com/antma/pyshogi-db/pkg/pattern"
	"github.com/antma/pyshogi-db/pkg/shogi"
	"github.com/antma/pyshogi-db/pkg/shogigame"
	"github.com/antma/pyshogi-db/pkg/shogikif"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Options are analysis creation options.
type Options struct {
	// MaxHands is the ply limit castle/opening recognition walks before
	// giving up, mirroring the upstream recognizers' own default cutoff.
	MaxHands int
}

func (o Options) String() string {
	return fmt.Sprintf("{maxHands=%v}", o.MaxHands)
}

// Report is the accumulated recognition output for one game.
type Report struct {
	Castles  *pattern.RecognizerResult
	Openings *openings.Result
}

// Engine encapsulates game loading and castle/opening recognition. It
// replaces the teacher's search-and-evaluation engine: this spec's
// non-goals exclude search, so there is nothing to search or evaluate --
// only a game to load and recognizers to run over it.
type Engine struct {
	name, author string
	opts         Options

	g  *shogigame.Game
	mu sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		opts:   Options{MaxHands: 60},
	}
	for _, fn := range opts {
		fn(e)
	}

	_ = e.Reset(ctx, nil)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetMaxHands(maxHands int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.MaxHands = maxHands
}

// Game returns the currently loaded game.
func (e *Engine) Game() *shogigame.Game {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.g
}

// Reset discards the current game and starts a fresh one from startPos
// (nil for the standard initial position).
func (e *Engine) Reset(ctx context.Context, startPos *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset, maxHands=%v", e.opts.MaxHands)

	g, err := shogigame.NewGame(ctx, startPos, false)
	if err != nil {
		return err
	}
	e.g = g

	logw.Infof(ctx, "New game: %v", e.g.Position())
	return nil
}

// LoadKIF replaces the current game with the one parsed from a KIF file's
// raw bytes (Shift-JIS or UTF-8, per shogikif.DecodeKIF).
func (e *Engine) LoadKIF(ctx context.Context, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "LoadKIF: %v bytes", len(data))

	text, err := shogikif.DecodeKIF(data)
	if err != nil {
		return fmt.Errorf("decode KIF: %w", err)
	}
	g, err := shogikif.ParseKIF(ctx, text)
	if err != nil {
		return fmt.Errorf("parse KIF: %w", err)
	}
	e.g = g

	logw.Infof(ctx, "Loaded game: %v moves", len(g.Moves()))
	return nil
}

// Move applies a USI move to the loaded game, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	if err := e.g.DoUsiMove(move); err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	logw.Infof(ctx, "Move %v: %v", move, e.g.Position())
	return nil
}

// Analyze runs castle and opening recognition over the loaded game and
// returns the combined report. Unlike the teacher's Analyze, this never
// runs in the background: recognition is a bounded scan over the move
// list, not an open-ended search, so there is nothing to halt.
func (e *Engine) Analyze(ctx context.Context) (Report, error) {
	e.mu.Lock()
	g := e.g
	maxHands := e.opts.MaxHands
	e.mu.Unlock()

	logw.Infof(ctx, "Analyze %v, maxHands=%v", g.Position(), maxHands)

	cr, err := castles.FindAll(g, maxHands)
	if err != nil {
		return Report{}, fmt.Errorf("castle recognition: %w", err)
	}
	or, err := openings.FindAll(g, maxHands)
	if err != nil {
		return Report{}, fmt.Errorf("opening recognition: %w", err)
	}

	logw.Infof(ctx, "Analyzed %v: %v castle tags, %v opening tags",
		g.Position(), len(cr.Sente)+len(cr.Gote), len(or.Sente)+len(or.Gote))
	return Report{Castles: cr, Openings: or}, nil
}

// SideToMove returns the side to move in the loaded game's current position.
func (e *Engine) SideToMove() shogi.Side {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.g.Position().SideToMove()
}
