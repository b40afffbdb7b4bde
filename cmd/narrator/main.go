// Command narrator parses unified diffs and prints a JSON change summary.
//
// With no arguments it reads one diff from stdin. With file arguments it
// parses each file concurrently, one independent parser per input, and
// merges the summaries in argument order. With -cache, summaries for
// previously seen diff content are served from the on-disk report cache.
package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	narrator "github.com/better-vibe/branch-narrator"
	"github.com/better-vibe/branch-narrator/chroma"
	"github.com/better-vibe/branch-narrator/fs"
	"github.com/better-vibe/branch-narrator/streamparse"
)

// App wires the CLI's collaborators so tests can substitute mocks.
type App struct {
	Args       []string  // diff files to parse; empty means read Input
	Input      io.Reader // stdin replacement for the no-argument mode
	Output     io.Writer
	NewParser  func() narrator.Parser // one parser per input
	Classifier narrator.LanguageClassifier
	Cache      *fs.ReportCache // nil disables report caching
}

// FileReport is one file's entry in the JSON summary.
type FileReport struct {
	Path      string `json:"path"`
	OldPath   string `json:"old_path,omitempty"`
	Status    string `json:"status"`
	Language  string `json:"language,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Report is the JSON summary written to Output.
type Report struct {
	Files          []FileReport `json:"files"`
	TotalAdditions int          `json:"total_additions"`
	TotalDeletions int          `json:"total_deletions"`
}

// Run parses all inputs and writes the merged summary. When a cache is
// configured and holds a summary for this exact input content, the cached
// bytes are written without parsing.
func (a *App) Run(ctx context.Context) error {
	inputs, err := a.readInputs()
	if err != nil {
		return err
	}

	key := cacheKey(inputs)
	if a.Cache != nil {
		if data, ok := a.Cache.Load(key); ok {
			_, err := a.Output.Write(data)
			return err
		}
	}

	diffs, err := a.parseAll(ctx, inputs)
	if err != nil {
		return err
	}

	report := Report{Files: []FileReport{}}
	for _, diff := range diffs {
		for _, file := range diff.Files {
			fr := FileReport{
				Path:    file.Path,
				OldPath: file.OldPath,
				Status:  file.Status.String(),
			}
			if a.Classifier != nil {
				fr.Language = a.Classifier.Language(file.Path)
			}
			for _, hunk := range file.Hunks {
				fr.Additions += len(hunk.Additions)
				fr.Deletions += len(hunk.Deletions)
			}
			report.TotalAdditions += fr.Additions
			report.TotalDeletions += fr.Deletions
			report.Files = append(report.Files, fr)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if a.Cache != nil {
		// Cache writes are best-effort; a full disk must not fail the run.
		_ = a.Cache.Store(key, buf.Bytes())
	}
	_, err = a.Output.Write(buf.Bytes())
	return err
}

// readInputs reads the full content of every input, in argument order.
func (a *App) readInputs() ([][]byte, error) {
	if len(a.Args) == 0 {
		data, err := io.ReadAll(a.Input)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return [][]byte{data}, nil
	}

	inputs := make([][]byte, len(a.Args))
	for i, path := range a.Args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs[i] = data
	}
	return inputs, nil
}

// cacheKey hashes the input contents in order, length-prefixed so input
// boundaries contribute to the key.
func cacheKey(inputs [][]byte) uint64 {
	d := xxhash.New()
	var pre [8]byte
	for _, in := range inputs {
		binary.LittleEndian.PutUint64(pre[:], uint64(len(in)))
		_, _ = d.Write(pre[:])
		_, _ = d.Write(in)
	}
	return d.Sum64()
}

// parseAll runs one parser per input. Parsers are not safe for concurrent
// use, so each goroutine gets its own via NewParser.
func (a *App) parseAll(ctx context.Context, inputs [][]byte) ([]*narrator.Diff, error) {
	if len(inputs) == 1 {
		diff, err := a.NewParser().Parse(bytes.NewReader(inputs[0]))
		if err != nil {
			return nil, err
		}
		return []*narrator.Diff{diff}, nil
	}

	diffs := make([]*narrator.Diff, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			diff, err := a.NewParser().Parse(bytes.NewReader(input))
			if err != nil {
				return fmt.Errorf("parse %s: %w", a.Args[i], err)
			}
			diffs[i] = diff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return diffs, nil
}

func main() {
	useCache := flag.Bool("cache", false, "serve repeated diff content from the report cache")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &App{
		Args:       flag.Args(),
		Input:      os.Stdin,
		Output:     os.Stdout,
		NewParser:  func() narrator.Parser { return streamparse.New() },
		Classifier: chroma.NewClassifier(),
	}
	if *useCache {
		app.Cache = fs.NewReportCache(fs.DefaultCacheDir())
	}
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		os.Exit(1)
	}
}
