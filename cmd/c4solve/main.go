// Command c4solve reads Connect Four move sequences from standard
// input, one per line, and writes the game-theoretic score of the
// resulting position to standard output, one per line.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/YKhan142008/c4-solver/internal/book"
	"github.com/YKhan142008/c4-solver/internal/engine"
	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/ttable"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("c4solve failed")
		os.Exit(1)
	}
}

// config holds the driver's resolved settings after flag parsing.
type config struct {
	BookPath  string
	TTLogSize int
	LogLevel  string
}

func run(args []string, in io.Reader, out io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	b := loadBook(cfg.BookPath)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		writeResult(out, b, cfg.TTLogSize, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

// parseFlags binds --book, --tt-log-size, --log-level and
// --verbose/-v to a fresh pflag.FlagSet and viper.Viper, so repeated
// calls (as in tests) never collide on shared global flag state.
func parseFlags(args []string) (config, error) {
	fs := pflag.NewFlagSet("c4solve", pflag.ContinueOnError)
	fs.String("book", "7x6.book", "path to the opening book file")
	fs.Int("tt-log-size", ttable.LogSize, "log2 of the transposition table size")
	fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.BoolP("verbose", "v", false, "shorthand for --log-level=debug")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return config{}, err
	}

	logLevel := v.GetString("log-level")
	if v.GetBool("verbose") {
		logLevel = "debug"
	}

	return config{
		BookPath:  v.GetString("book"),
		TTLogSize: v.GetInt("tt-log-size"),
		LogLevel:  logLevel,
	}, nil
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.WarnLevel
	}
	return parsed
}

// loadBook reads the opening book once at startup, outside the per-line
// timing path. A missing or malformed book is a soft failure: it is
// logged and the solver falls back to search for every position.
func loadBook(path string) *book.Book {
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book unavailable, continuing without it")
		return nil
	}
	defer f.Close()

	b, err := book.Load(f)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book failed to load, continuing without it")
		return nil
	}
	return b
}

// writeResult parses seq, constructing its Position; if PlaySequence
// did not consume the whole token, it writes the sentinel "invalid".
// Otherwise it solves the resulting position with a fresh engine
// sharing the loaded book, and writes the score.
func writeResult(out io.Writer, b *book.Book, ttLogSize int, seq string) {
	pos := position.NewPosition()
	consumed := pos.PlaySequence(seq)
	if consumed != len(seq) {
		fmt.Fprintln(out, "invalid")
		return
	}

	e := engine.NewWithTableLogSize(b, ttLogSize)
	score := e.Solve(pos)
	log.Debug().Str("seq", seq).Int("score", score).Uint64("nodes", e.NodeCount()).Msg("solved")
	fmt.Fprintln(out, score)
}
