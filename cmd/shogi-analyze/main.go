package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/antma/pyshogi-db/pkg/engine"
	"github.com/seekerror/logw"
)

var (
	maxHands = flag.Int("max_hands", 60, "Maximum ply count to scan for castle/opening formation")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: shogi-analyze [options] file.kif

shogi-analyze recognizes castle formations and openings reached in a
recorded shogi game.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if flag.NArg() != 1 {
		flag.Usage()
		logw.Exitf(ctx, "Expected exactly one KIF file argument")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logw.Exitf(ctx, "Failed to read %v: %v", flag.Arg(0), err)
	}

	e := engine.New(ctx, "shogi-analyze", "antma", engine.WithOptions(engine.Options{MaxHands: *maxHands}))
	if err := e.LoadKIF(ctx, data); err != nil {
		logw.Exitf(ctx, "Failed to load %v: %v", flag.Arg(0), err)
	}

	report, err := e.Analyze(ctx)
	if err != nil {
		logw.Exitf(ctx, "Analysis failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logw.Exitf(ctx, "Failed to encode report: %v", err)
	}
}
