// Package generator runs the full document-to-C# pipeline: load, filter,
// synthesize, render and write, with diagnostics and a build cache.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/asyncgen/asyncgen/internal/asyncapi"
	"github.com/asyncgen/asyncgen/internal/buildcache"
	"github.com/asyncgen/asyncgen/internal/config"
	"github.com/asyncgen/asyncgen/internal/diagnostic"
	"github.com/asyncgen/asyncgen/internal/render"
	"github.com/asyncgen/asyncgen/internal/schema"
	"github.com/asyncgen/asyncgen/internal/synth"
	"github.com/asyncgen/asyncgen/internal/typeresolve"
)

// Options controls a generator run.
type Options struct {
	Config config.Config

	// Force ignores the build cache.
	Force bool

	// DryRun renders files without touching the output directory.
	DryRun bool

	// Workers bounds concurrent file writes. Zero means GOMAXPROCS.
	Workers int

	Logger zerolog.Logger
}

// File is one rendered output file.
type File struct {
	Name    string // relative to the output directory
	Content string
}

// Result reports what a run produced.
type Result struct {
	Namespace string
	Files     []File

	Written   []string
	Unchanged []string
	Removed   []string

	// UpToDate is set when the cache matched and nothing was regenerated.
	UpToDate bool

	Diagnostics *diagnostic.Collector
}

// Run generates C# sources for opts.Config.Input into opts.Config.Output.
//
// A document that cannot be loaded fails the run. Errors in individual
// entities or channels are recorded in Result.Diagnostics and the remaining
// files are still written; callers decide the exit status from
// Diagnostics.HasErrors.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	log := opts.Logger
	diags := diagnostic.NewCollector(cfg.Diagnostics.Strict, cfg.Diagnostics.Quiet)
	result := &Result{Diagnostics: diags}

	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("reading AsyncAPI document: %w", err)
	}

	inputHash := buildcache.Hash(data)
	configHash := buildcache.Hash(cfg.Fingerprint())
	cachePath := buildcache.CachePath(cfg.Output)
	prev := buildcache.Load(cachePath)
	if !opts.Force && !opts.DryRun && prev.IsValid(inputHash, configHash, cfg.Output) {
		log.Info().Str("output", cfg.Output).Msg("generated files are up to date")
		result.UpToDate = true
		return result, nil
	}

	doc, err := asyncapi.Parse(data, asyncapi.DetectFormat(cfg.Input))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Input, err)
	}
	log.Debug().
		Str("version", doc.Version).
		Int("entities", len(doc.Entities)).
		Int("channels", len(doc.Channels)).
		Msg("document loaded")

	result.Namespace = cfg.Namespace
	if result.Namespace == "" {
		result.Namespace = render.Namespace(doc.Title)
	}

	files := synthesize(doc, cfg, result.Namespace, diags, log)
	result.Files = files
	if opts.DryRun {
		return result, nil
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeAll(ctx, cfg.Output, files, opts.Workers, result); err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	for _, name := range prev.Stale(names) {
		if !isGeneratedName(name) {
			continue
		}
		if err := os.Remove(filepath.Join(cfg.Output, name)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", name).Msg("could not remove stale file")
			continue
		}
		result.Removed = append(result.Removed, name)
		log.Debug().Str("file", name).Msg("removed stale file")
	}

	// A failed run is retried in full next time.
	if diags.HasErrors() {
		buildcache.Delete(cachePath)
	} else if err := buildcache.Save(cachePath, buildcache.New(inputHash, configHash, names)); err != nil {
		log.Warn().Err(err).Msg("could not save build cache")
	}

	log.Info().
		Int("written", len(result.Written)).
		Int("unchanged", len(result.Unchanged)).
		Int("removed", len(result.Removed)).
		Str("namespace", result.Namespace).
		Msg("generation complete")
	return result, nil
}

// synthesize turns doc into rendered files, recording per-item failures in
// diags.
func synthesize(doc *schema.Document, cfg config.Config, namespace string, diags *diagnostic.Collector, log zerolog.Logger) []File {
	kept, skipped := asyncapi.Filter(doc.Entities, asyncapi.FilterOptions{EnvelopeFields: cfg.Models.EnvelopeFields})
	for _, s := range skipped {
		log.Debug().Str("entity", s.Name).Str("reason", s.Reason).Msg("skipping schema")
		diags.Info(diagnostic.CategorySkipped, s.Name, s.Reason)
	}

	resolver := typeresolve.New(typeresolve.CSharp,
		typeresolve.WithEntities(doc.Lookup()),
		typeresolve.WithPassthrough(passthrough(diags)),
	)

	decls, err := synth.NewEntitySynthesizer(resolver).Synthesize(kept)
	diags.Report(err)

	var files []File
	seen := make(map[string]bool)
	add := func(name, content string) {
		if !isGeneratedName(name) {
			diags.Error(diagnostic.CategorySchemaMapping, name, "not a plain .cs file name inside the output directory; skipped")
			return
		}
		if seen[name] {
			diags.Error(diagnostic.CategorySchemaMapping, name, "two outputs map to the same file; keeping the first")
			return
		}
		seen[name] = true
		files = append(files, File{Name: name, Content: content})
	}

	for _, decl := range decls {
		add(render.FileName(decl), render.Declaration(decl, namespace))
	}

	if !cfg.Handlers.Enabled {
		return files
	}
	if len(doc.Channels) == 0 {
		log.Info().Msg("no subscribed channels; handlers file not generated")
		return files
	}
	module, err := synth.SynthesizeHandlers(doc.Channels)
	diags.Report(err)
	if module == nil {
		return files
	}
	for _, w := range module.Warnings {
		diags.Report(w)
	}
	if len(module.Handlers) > 0 {
		add(cfg.Handlers.FileName, render.Handlers(module, render.HandlerOptions{
			Namespace: namespace,
			ClassName: cfg.Handlers.ClassName,
			Usings:    cfg.Handlers.Usings,
		}))
	}
	return files
}

// passthrough reports fallback mappings. Plain objects map to object by
// intent and are informational; anything else is a warning.
func passthrough(diags *diagnostic.Collector) typeresolve.PassthroughFunc {
	return func(node *schema.SchemaNode, reason string) {
		subject := passthroughSubject(node)
		if node.Type == "object" && node.Format == "" {
			diags.Info(diagnostic.CategoryUnknownPassthrough, subject, reason+" mapped to object")
			return
		}
		diags.WarnWithHint(diagnostic.CategoryUnknownPassthrough, subject, node.Pointer,
			reason+" has no mapping; using object",
			"reference a named schema or use a supported type/format")
	}
}

// passthroughSubject names the schema a fallback was taken for: its
// reference when it has one, else the last segment of its pointer.
func passthroughSubject(node *schema.SchemaNode) string {
	if node.Ref != "" {
		return node.Ref
	}
	ptr := node.Pointer
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		ptr = ptr[i+1:]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(ptr)
}

func writeAll(ctx context.Context, outDir string, files []File, workers int, result *Result) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := writeFile(filepath.Join(outDir, f.Name), f.Content)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if changed {
				result.Written = append(result.Written, f.Name)
			} else {
				result.Unchanged = append(result.Unchanged, f.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slices.Sort(result.Written)
	slices.Sort(result.Unchanged)
	return nil
}

// writeFile writes content unless the file already holds it, so watchers
// downstream are not triggered by no-op runs.
func writeFile(path, content string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == content {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// isGeneratedName reports whether name is a bare .cs file name, so nothing
// is written or removed outside the output directory.
func isGeneratedName(name string) bool {
	return filepath.Ext(name) == ".cs" && !strings.ContainsAny(name, `/\`) && name != ".." && name != "."
}
