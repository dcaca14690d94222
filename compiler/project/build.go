package project

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/xiaobogaga/jackvm/compiler/internal"
	"github.com/xiaobogaga/jackvm/vm"
)

// UnitResult is the outcome of compiling one source file.
type UnitResult struct {
	File         string
	Class        string
	Output       string
	Functions    []string
	Statics      []string
	Fields       []string
	Instructions int
	Duration     time.Duration
	Err          error
}

// Builder compiles units independently: every unit gets its own tokenizer, symbol table
// and writer, so units can run in parallel and one failure does not stop the others.
type Builder struct {
	config Config
	logger zerolog.Logger
}

func NewBuilder(config Config, logger zerolog.Logger) *Builder {
	return &Builder{config: config, logger: logger}
}

func (b *Builder) options() internal.Options {
	return internal.Options{SingleOperator: b.config.SingleOperator, Trace: b.config.Trace}
}

// unit carries a compiled program from the compile phase to the write phase.
type unit struct {
	result   UnitResult
	compiled *internal.Result
	logger   zerolog.Logger
}

// Build compiles files with at most config.Jobs units in flight. Results keep the order of
// files. When several files declare a class with the same output path, the first in file
// order is written and the others fail. The returned error combines the errors of all
// failed units.
func (b *Builder) Build(ctx context.Context, files []string) ([]UnitResult, error) {
	units := make([]unit, len(files))
	b.parallel(files, func(i int, file string) {
		if err := ctx.Err(); err != nil {
			units[i] = unit{result: UnitResult{File: file, Err: fmt.Errorf("%s: %w", file, err)}}
			return
		}
		units[i] = b.compileUnit(file)
	})

	claimed := map[string]string{}
	for i := range units {
		u := &units[i]
		if u.result.Err != nil {
			continue
		}
		if first, ok := claimed[u.result.Output]; ok {
			u.result.Err = fmt.Errorf("%s: class %s already compiled from %s", u.result.File, u.result.Class, first)
			u.logger.Error().Err(u.result.Err).Msg("duplicate class")
			continue
		}
		claimed[u.result.Output] = u.result.File
	}

	b.parallel(files, func(i int, _ string) {
		if units[i].result.Err == nil {
			b.writeUnit(&units[i])
		}
	})

	results := make([]UnitResult, len(units))
	var errs error
	for i, u := range units {
		results[i] = u.result
		errs = multierr.Append(errs, u.result.Err)
	}
	return results, errs
}

func (b *Builder) parallel(files []string, fn func(i int, file string)) {
	group := errgroup.Group{}
	group.SetLimit(b.config.Jobs)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			fn(i, file)
			return nil
		})
	}
	_ = group.Wait()
}

// BuildUnit compiles one file and writes <Class>.vm, plus <Class>.xml and <Class>T.xml when
// tracing. Nothing is written for a unit that fails to compile or does not match its golden
// file.
func (b *Builder) BuildUnit(file string) UnitResult {
	u := b.compileUnit(file)
	if u.result.Err == nil {
		b.writeUnit(&u)
	}
	return u.result
}

// compileUnit compiles file and checks it against its golden file without writing anything.
func (b *Builder) compileUnit(file string) unit {
	start := time.Now()
	u := unit{
		result: UnitResult{File: file},
		logger: b.logger.With().Str("file", file).Logger(),
	}

	compiled, err := b.compile(file)
	u.result.Duration = time.Since(start)
	if err != nil {
		u.result.Err = err
		u.logger.Error().Err(err).Msg("compile failed")
		return u
	}
	u.compiled = compiled
	u.result.Class = compiled.ClassName
	u.result.Functions = compiled.Program.Functions()
	u.result.Statics = compiled.Statics
	u.result.Fields = compiled.Fields
	u.result.Instructions = len(compiled.Program)
	u.result.Output = b.outputPath(file, compiled.ClassName)
	if base := filepath.Base(file); base != compiled.ClassName+JackFileSuffix {
		u.logger.Warn().Str("class", compiled.ClassName).Msg("class name does not match file name")
	}

	if b.config.Golden != "" {
		if err := b.checkGolden(compiled); err != nil {
			u.result.Err = fmt.Errorf("%s: %w", file, err)
			u.logger.Error().Err(err).Msg("golden mismatch")
		}
	}
	return u
}

func (b *Builder) outputPath(file, class string) string {
	outDir := b.config.Output
	if outDir == "" {
		outDir = filepath.Dir(file)
	}
	return filepath.Join(outDir, class+".vm")
}

func (b *Builder) writeUnit(u *unit) {
	compiled := u.compiled
	if err := writeFileAtomic(u.result.Output, compiled.Program); err != nil {
		u.result.Err = fmt.Errorf("%s: %w", u.result.File, err)
		return
	}
	if compiled.Trace != nil {
		outDir := filepath.Dir(u.result.Output)
		traces := map[string][]byte{
			compiled.ClassName + ".xml":  compiled.Trace,
			compiled.ClassName + "T.xml": compiled.Tokens,
		}
		for name, data := range traces {
			if err := writeFileAtomic(filepath.Join(outDir, name), bytes.NewReader(data)); err != nil {
				u.result.Err = fmt.Errorf("%s: %w", u.result.File, err)
				return
			}
		}
	}
	u.logger.Debug().
		Str("class", u.result.Class).
		Int("instructions", u.result.Instructions).
		Dur("elapsed", u.result.Duration).
		Msg("compiled")
}

func (b *Builder) compile(file string) (*internal.Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	compiled, err := internal.CompileUnit(src, b.options())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return compiled, nil
}

func (b *Builder) checkGolden(compiled *internal.Result) error {
	path := filepath.Join(b.config.Golden, compiled.ClassName+".vm")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	defer f.Close()
	want, err := vm.ReadProgram(f)
	if err != nil {
		return fmt.Errorf("golden %s: %w", path, err)
	}
	if mismatch := vm.Compare(compiled.Program, want); mismatch != nil {
		return fmt.Errorf("golden %s: %w", path, mismatch)
	}
	return nil
}

// writeFileAtomic writes the content of src next to path and renames it into place, so
// readers never see a partially written file.
func writeFileAtomic(path string, src io.WriterTo) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := src.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
