// Package driver runs validation over files and directories: loading,
// caching, parallelism and timing live here so the validator itself stays
// pure.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"scenelint/internal/diag"
	"scenelint/internal/observ"
	"scenelint/internal/registry"
	"scenelint/internal/source"
	"scenelint/internal/validate"
)

// Options configures a validation run.
type Options struct {
	// ActiveNamespace resolves unqualified command tokens.
	ActiveNamespace string
	MaxDiagnostics  int
	// Jobs bounds directory-run parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// Cache, when non-nil, short-circuits unchanged files.
	Cache *DiskCache
	// Sink receives stage events; nil means silent.
	Sink Sink
	// Registry defaults to the embedded command set.
	Registry *registry.Registry
	// Timings enables per-phase timing collection.
	Timings bool
}

// FileResult holds everything one file produced.
type FileResult struct {
	Path        string
	Snapshot    source.Snapshot
	Diagnostics []diag.Diagnostic
	Timing      *observ.Report
	FromCache   bool
	// LoadErr is set when the file could not be read; Diagnostics then
	// carries a single analysis-incomplete entry.
	LoadErr error
}

// HasErrors reports whether any diagnostic is error severity.
func (r *FileResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (o *Options) fill() {
	if o.ActiveNamespace == "" {
		o.ActiveNamespace = registry.TagPrimary
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = validate.DefaultMaxDiagnostics
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.Sink == nil {
		o.Sink = NopSink{}
	}
	if o.Registry == nil {
		o.Registry = registry.Default()
	}
}

// ValidateSnapshot runs one validation pass over an in-memory snapshot.
// Кэш здесь не используется: living buffers меняются слишком часто.
func ValidateSnapshot(snap source.Snapshot, opts Options) *FileResult {
	opts.fill()

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	return validateSnapshot(snap, opts, timer)
}

// validateSnapshot ожидает заполненные opts; timer может уже содержать
// фазы загрузки.
func validateSnapshot(snap source.Snapshot, opts Options, timer *observ.Timer) *FileResult {
	res := &FileResult{Snapshot: snap}

	v := validate.New(opts.Registry, validate.Options{
		ActiveNamespace: opts.ActiveNamespace,
		MaxDiagnostics:  opts.MaxDiagnostics,
	})

	if timer != nil {
		idx := timer.Begin(observ.PhaseRules)
		res.Diagnostics = v.Validate(snap)
		timer.End(idx, fmt.Sprintf("%d diagnostics", len(res.Diagnostics)))
		report := timer.Report()
		res.Timing = &report
	} else {
		res.Diagnostics = v.Validate(snap)
	}
	return res
}

// ValidateFile loads path and validates it, consulting the disk cache when
// one is configured.
func ValidateFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	opts.fill()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &FileResult{Path: path}
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	started := time.Now()
	opts.Sink.Emit(Event{Path: path, Stage: StageLoad, Status: StatusStart})

	var snap source.Snapshot
	var err error
	if timer != nil {
		idx := timer.Begin(observ.PhaseSnapshot)
		snap, err = source.Load(path)
		timer.End(idx, fmt.Sprintf("%d lines", snap.LineCount()))
	} else {
		snap, err = source.Load(path)
	}
	opts.Sink.Emit(Event{Path: path, Stage: StageLoad, Status: StatusEnd, Elapsed: time.Since(started), Err: err})
	if err != nil {
		res.LoadErr = err
		res.Diagnostics = []diag.Diagnostic{diag.NewWarning(
			diag.KindAnalysisIncomplete,
			source.LineCol{Line: 1, Col: 1},
			"failed to load file: "+err.Error(),
		)}
		return res, nil
	}
	res.Snapshot = snap

	fingerprint := opts.Registry.Fingerprint()
	key := CacheKey(snap, fingerprint, opts.ActiveNamespace, opts.MaxDiagnostics)
	if opts.Cache != nil {
		if cached, hit, cacheErr := opts.Cache.Get(key, fingerprint); cacheErr == nil && hit {
			opts.Sink.Emit(Event{Path: path, Stage: StageValidate, Status: StatusSkipped})
			res.Diagnostics = cached
			res.FromCache = true
			return res, nil
		}
	}

	started = time.Now()
	opts.Sink.Emit(Event{Path: path, Stage: StageValidate, Status: StatusStart})
	run := validateSnapshot(snap, opts, timer)
	res.Diagnostics = run.Diagnostics
	res.Timing = run.Timing
	opts.Sink.Emit(Event{Path: path, Stage: StageValidate, Status: StatusEnd, Elapsed: time.Since(started)})

	if opts.Cache != nil {
		started = time.Now()
		opts.Sink.Emit(Event{Path: path, Stage: StageCache, Status: StatusStart})
		err := opts.Cache.Put(key, snap, fingerprint, res.Diagnostics)
		opts.Sink.Emit(Event{Path: path, Stage: StageCache, Status: StatusEnd, Elapsed: time.Since(started), Err: err})
	}
	return res, nil
}

// ListScriptFiles возвращает отсортированный список всех *.py файлов в
// директории.
func ListScriptFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ValidateDir validates every *.py file under dir in parallel. Results come
// back in sorted path order regardless of completion order.
func ValidateDir(ctx context.Context, dir string, opts Options) ([]*FileResult, error) {
	opts.fill()

	files, err := ListScriptFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := ValidateFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
