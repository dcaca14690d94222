package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/xiaobogaga/jackvm/compiler/project"
)

const (
	ERROR_STATUS_CODE = 1
	USAGE_STATUS_CODE = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	statusCode := _main(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(statusCode)
}

// _main runs jackc with args (program name first) and returns the exit status.
func _main(ctx context.Context, args []string, outW, errW io.Writer) int {
	flags := flag.NewFlagSet("jackc", flag.ContinueOnError)
	flags.SetOutput(errW)
	var (
		configPath     = flags.String("config", "", "path of a jackc.yaml config, default ./jackc.yaml when present")
		output         = flags.String("o", "", "directory of the generated .vm files, default next to each source")
		jobs           = flags.Int("j", 0, "number of units compiled in parallel")
		singleOperator = flags.Bool("single-op", false, "allow at most one operator per expression")
		trace          = flags.Bool("trace", false, "also write the parse tree of each unit as <Class>.xml")
		golden         = flags.String("golden", "", "directory of expected <Class>.vm files to compare with")
		report         = flags.String("report", "", "write a JSON build report to this path")
		watch          = flags.Bool("watch", false, "rebuild units when their sources change")
		verbose        = flags.Bool("v", false, "verbose logging")
	)
	flags.Usage = func() {
		fmt.Fprintln(errW, "usage: jackc [flags] <file.jack | dir>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return USAGE_STATUS_CODE
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: errW, NoColor: true}).
		Level(level).
		With().Timestamp().Str("component", "jackc").Logger()

	config := project.DefaultConfig()
	if *configPath == "" {
		*configPath = project.FindConfig(".")
	}
	if *configPath != "" {
		loaded, err := project.LoadConfig(*configPath)
		if err != nil {
			logger.Error().Err(err).Msg("invalid config")
			return ERROR_STATUS_CODE
		}
		config = loaded
		logger.Debug().Str("config", *configPath).Msg("config loaded")
	}

	// Flags win over the config file.
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			config.Output = *output
		case "j":
			config.Jobs = *jobs
		case "single-op":
			config.SingleOperator = *singleOperator
		case "trace":
			config.Trace = *trace
		case "golden":
			config.Golden = *golden
		case "report":
			config.Report = *report
		}
	})
	switch flags.NArg() {
	case 0:
		if *configPath == "" {
			flags.Usage()
			return USAGE_STATUS_CODE
		}
	case 1:
		config.Sources = flags.Arg(0)
	default:
		flags.Usage()
		return USAGE_STATUS_CODE
	}
	if err := config.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return ERROR_STATUS_CODE
	}

	builder := project.NewBuilder(config, logger.With().Str("component", "build").Logger())
	files, err := project.Discover(config)
	if err != nil {
		logger.Error().Err(err).Msg("cannot list sources")
		return ERROR_STATUS_CODE
	}
	if len(files) == 0 {
		logger.Warn().Str("sources", config.Sources).Msg("no .jack file found")
	}

	started := time.Now()
	results, buildErr := builder.Build(ctx, files)
	printResults(outW, results, buildErr)
	if config.Report != "" {
		if err := project.NewReport(started, results).WriteFile(config.Report); err != nil {
			logger.Error().Err(err).Msg("cannot write report")
			return ERROR_STATUS_CODE
		}
	}

	if *watch {
		err := builder.Watch(ctx, project.DefaultDebounce, func(results []project.UnitResult, err error) {
			printResults(outW, results, err)
		})
		if err != nil {
			logger.Error().Err(err).Msg("watch failed")
			return ERROR_STATUS_CODE
		}
		return 0
	}
	if buildErr != nil {
		return ERROR_STATUS_CODE
	}
	return 0
}

func printResults(w io.Writer, results []project.UnitResult, err error) {
	for _, result := range results {
		if result.Err == nil {
			fmt.Fprintf(w, "%s -> %s\n", result.File, filepath.Clean(result.Output))
		}
	}
	for _, unitErr := range multierr.Errors(err) {
		fmt.Fprintf(w, "%v\n", unitErr)
	}
	if failed := len(multierr.Errors(err)); failed > 0 {
		fmt.Fprintf(w, "%d of %d units failed\n", failed, len(results))
	}
}
