package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/arjunmahishi/jsinv/internal/logging"
	"github.com/arjunmahishi/jsinv/jsinv"
	"github.com/arjunmahishi/jsinv/output"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		output.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "jsinv",
		Usage:   "inventory conditionals, classes, object literals and functions in JavaScript/TypeScript",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level for watch and mcp: debug, info, warn, error",
				Sources: cli.EnvVars("JSINV_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			scanCommand(),
			watchCommand(),
			mcpCommand(),
		},
	}
}

func languageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "lang",
		Aliases: []string{"l"},
		Usage:   "grammar: javascript, typescript, tsx (default: from file extension)",
	}
}

func sourceTypeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "source-type",
		Value: string(jsinv.SourceModule),
		Usage: "module or script",
	}
}

func compactFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "compact",
		Usage: "minimize output",
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "analyze one file, or source text read from stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "file to analyze (default: stdin)",
			},
			languageFlag(),
			sourceTypeFlag(),
			compactFlag(),
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "print per-category counts instead of records",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(_ context.Context, cmd *cli.Command) error {
	file := cmd.String("file")
	opts := jsinv.AnalyzeOptions{
		Language:   languageFor(cmd.String("lang"), file),
		SourceType: jsinv.SourceType(cmd.String("source-type")),
	}

	var (
		report *jsinv.Report
		err    error
	)
	if file != "" {
		report, err = jsinv.AnalyzeFile(file, opts)
	} else {
		var source []byte
		source, err = io.ReadAll(reader(cmd))
		if err != nil {
			return err
		}
		report, err = jsinv.Analyze(string(source), opts)
	}
	if err != nil {
		return err
	}

	w := output.New(output.Config{Compact: cmd.Bool("compact"), Output: writer(cmd)})
	if cmd.Bool("summary") {
		return w.Write(report.Summary())
	}
	return w.Write(report)
}

// languageFor picks the explicit language, else the one registered for
// the file's extension, else the default.
func languageFor(explicit, file string) string {
	if explicit != "" {
		return explicit
	}
	if file != "" {
		if lang := jsinv.ByExtension(filepath.Ext(file)); lang != nil {
			return lang.Name()
		}
	}
	return ""
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "analyze every supported file under a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "root path to scan",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "single file to analyze",
			},
			languageFlag(),
			sourceTypeFlag(),
			compactFlag(),
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   runtime.NumCPU(),
				Usage:   "number of parallel workers",
			},
			&cli.Int64Flag{
				Name:  "max-bytes",
				Value: 2 * 1024 * 1024,
				Usage: "skip files larger than this",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit non-zero when any file fails to parse",
			},
		},
		Action: runScan,
	}
}

func runScan(_ context.Context, cmd *cli.Command) error {
	opts := jsinv.ScanOptions{
		Language:   cmd.String("lang"),
		SourceType: jsinv.SourceType(cmd.String("source-type")),
		Path:       cmd.String("path"),
		File:       cmd.String("file"),
		Jobs:       cmd.Int("jobs"),
		MaxBytes:   cmd.Int64("max-bytes"),
	}

	results, err := jsinv.Scan(opts)
	if err != nil {
		return err
	}

	w := output.New(output.Config{Compact: cmd.Bool("compact"), Output: writer(cmd)})
	if err := w.Write(results); err != nil {
		return err
	}

	if cmd.Bool("strict") {
		for _, r := range results {
			if r.Error != "" {
				return errors.New("one or more files failed to parse")
			}
		}
	}
	return nil
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	return logging.New(cmd.Root().String("log-level"), errWriter(cmd))
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
