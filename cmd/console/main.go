// Command console generates task prompts for local recordings. Paths given
// as arguments are processed once; without arguments it reads paths from
// an interactive prompt.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"videoprompt/config"
	"videoprompt/core/videoprompt"
	"videoprompt/log"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load("config.toml")
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Log.Level)

	generator, err := videoprompt.NewFromConfig(ctx, cfg.Gemini, videoprompt.WithMaxVideoBytes(cfg.Video.MaxBytes))
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		return runPaths(ctx, generator, os.Args[1:], os.Stdout)
	}

	rl, err := readline.New("video> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()
	return repl(ctx, generator, rl, os.Stdout)
}

type lineReader interface {
	Readline() (string, error)
}

// runPaths prints one result per path and fails if any of them failed.
func runPaths(ctx context.Context, generator *videoprompt.Generator, paths []string, out io.Writer) error {
	failures := 0
	for _, path := range paths {
		res := generator.Generate(ctx, path)
		if len(paths) > 1 {
			fmt.Fprintf(out, "== %s\n", path)
		}
		fmt.Fprintln(out, res.String())
		if !res.OK() {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d videos failed", failures, len(paths))
	}
	return nil
}

func repl(ctx context.Context, generator *videoprompt.Generator, rl lineReader, out io.Writer) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		path := strings.Trim(strings.TrimSpace(line), `"'`)
		if path == "" {
			continue
		}
		fmt.Fprintln(out, generator.GenerateTaskPrompt(ctx, path))
		if ctx.Err() != nil {
			return nil
		}
	}
}
