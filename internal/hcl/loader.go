package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/zregistry/internal/ctxlog"
	"github.com/vk/zregistry/internal/fsutil"
	"github.com/vk/zregistry/internal/registry"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"go.uber.org/multierr"
)

// DefaultPattern matches every registration script below the discovery root.
const DefaultPattern = "**/BUILD.hcl"

// scriptSchema lists the registration calls a script may contain, one block
// type per test kind.
var scriptSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: registry.HostTest.String(), LabelNames: []string{"name"}},
		{Type: registry.TargetTest.String(), LabelNames: []string{"name"}},
	},
}

// evalContext is shared by every script. Scripts may build option values
// with a few pure functions but cannot see each other's state.
var evalContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"concat": stdlib.ConcatFunc,
		"format": stdlib.FormatFunc,
	},
}

// Loader locates registration scripts and executes them against a fresh
// registry.
type Loader struct {
	pattern string
	checker registry.FileChecker
}

// Option configures a Loader.
type Option func(*Loader)

// WithPattern sets the doublestar pattern used to find scripts. An empty
// pattern keeps DefaultPattern.
func WithPattern(pattern string) Option {
	return func(l *Loader) {
		if pattern != "" {
			l.pattern = pattern
		}
	}
}

// WithChecker sets the filesystem collaborator used when freezing. By
// default overlays are looked up in the same fs.FS as the scripts.
func WithChecker(checker registry.FileChecker) Option {
	return func(l *Loader) { l.checker = checker }
}

// NewLoader creates a Loader for DefaultPattern unless overridden.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{pattern: DefaultPattern}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover runs one discovery pass over fsys. Every script is executed even
// after an earlier one failed, and all registration errors are returned
// together. If registration succeeded the registry is frozen, so missing
// overlays surface here too. On any error no registry is returned.
func (l *Loader) Discover(ctx context.Context, fsys fs.FS) (*registry.Registry, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovery pass started.", "pattern", l.pattern)

	scripts, err := fsutil.FindFiles(fsys, l.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to find registration scripts: %w", err)
	}
	if len(scripts) == 0 {
		logger.Warn("No registration scripts found.", "pattern", l.pattern)
	}
	logger.Debug("Found registration scripts.", "count", len(scripts))

	checker := l.checker
	if checker == nil {
		checker = registry.FSChecker{FS: fsys}
	}
	reg := registry.New(checker)
	parser := hclparse.NewParser()

	var errs error
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := l.execScript(fsys, parser, reg, script)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		logger.Debug("Executed registration script.", "script", script, "registrations", n)
	}
	if errs != nil {
		return nil, errs
	}

	if err := reg.Freeze(); err != nil {
		return nil, err
	}

	logger.Info("Discovery pass complete.", "scripts", len(scripts), "tests", reg.Len())
	return reg, nil
}

// execScript parses one script and registers each of its blocks. It
// returns the number of successful registrations and every error met.
func (l *Loader) execScript(fsys fs.FS, parser *hclparse.Parser, reg *registry.Registry, script string) (int, error) {
	src, err := fs.ReadFile(fsys, script)
	if err != nil {
		return 0, fmt.Errorf("failed to read registration script %s: %w", script, err)
	}

	file, diags := parser.ParseHCL(src, script)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to parse registration script %s: %w", script, diags)
	}

	content, diags := file.Body.Content(scriptSchema)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to decode registration script %s: %w", script, diags)
	}

	scope := reg.Scope(path.Dir(script), script)

	var errs error
	registered := 0
	for _, block := range content.Blocks {
		if err := registerBlock(scope, block); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", block.DefRange, err))
			continue
		}
		registered++
	}
	return registered, errs
}

func registerBlock(scope *registry.Scope, block *hcl.Block) error {
	kind, err := registry.ParseKind(block.Type)
	if err != nil {
		return err
	}

	options, err := blockOptions(block.Body)
	if err != nil {
		return err
	}

	return scope.Register(block.Labels[0], kind, options)
}

// blockOptions evaluates every attribute of a registration block.
func blockOptions(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	options := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalContext)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", name, err)
		}
		options[name] = native
	}
	return options, nil
}
