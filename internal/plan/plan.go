// Package plan turns a frozen registry into the ordered list of tests a
// runner should execute.
package plan

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vk/zregistry/internal/registry"
)

// Source is the read side of a frozen registry.
type Source interface {
	All() (iter.Seq[registry.TestDescriptor], error)
	Lookup(name string) (registry.TestDescriptor, bool, error)
}

// Entry is one test to execute.
type Entry struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	Overlays   []string `json:"overlays,omitempty" yaml:"overlays,omitempty"`
	ProjectDir string   `json:"project_dir,omitempty" yaml:"project_dir,omitempty"`
}

// Plan is an ordered run plan.
type Plan struct {
	Tests []Entry `json:"tests" yaml:"tests"`
}

// Filter narrows a plan. The zero Filter selects every test.
type Filter struct {
	// Kind keeps only tests of this kind when non-zero.
	Kind registry.Kind
	// NamePattern keeps only tests whose name matches this doublestar pattern.
	NamePattern string
	// Names selects tests explicitly, in the given order. Every name must be
	// registered.
	Names []string
}

// UnknownTestsError lists explicitly requested tests that are not registered.
type UnknownTestsError struct {
	Names []string
}

func (e *UnknownTestsError) Error() string {
	return fmt.Sprintf("unknown test(s): %s", strings.Join(e.Names, ", "))
}

// Validate reports a malformed name pattern.
func (f Filter) Validate() error {
	if f.NamePattern != "" && !doublestar.ValidatePattern(f.NamePattern) {
		return fmt.Errorf("invalid name pattern %q: %w", f.NamePattern, doublestar.ErrBadPattern)
	}
	return nil
}

func (f Filter) keep(d registry.TestDescriptor) (bool, error) {
	if f.Kind != 0 && d.Kind != f.Kind {
		return false, nil
	}
	if f.NamePattern == "" {
		return true, nil
	}
	return doublestar.Match(f.NamePattern, d.Name)
}

// Build creates a plan from src. Without explicit names the plan follows
// registration order.
func Build(src Source, f Filter) (*Plan, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	candidates, err := f.candidates(src)
	if err != nil {
		return nil, err
	}

	p := &Plan{Tests: []Entry{}}
	for _, d := range candidates {
		ok, err := f.keep(d)
		if err != nil {
			return nil, err
		}
		if ok {
			p.Tests = append(p.Tests, newEntry(d))
		}
	}
	return p, nil
}

func (f Filter) candidates(src Source) ([]registry.TestDescriptor, error) {
	if len(f.Names) == 0 {
		seq, err := src.All()
		if err != nil {
			return nil, err
		}
		var out []registry.TestDescriptor
		for d := range seq {
			out = append(out, d)
		}
		return out, nil
	}

	var out []registry.TestDescriptor
	var unknown []string
	seen := make(map[string]struct{}, len(f.Names))
	for _, name := range f.Names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		d, ok, err := src.Lookup(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, d)
	}
	if len(unknown) > 0 {
		return nil, &UnknownTestsError{Names: unknown}
	}
	return out, nil
}

func newEntry(d registry.TestDescriptor) Entry {
	return Entry{
		Name:       d.Name,
		Kind:       d.Kind.String(),
		Overlays:   d.OverlayPaths,
		ProjectDir: d.ProjectDir,
	}
}

// Payload returns the plan as plain maps and slices, the shape event
// transports serialize without reflection on custom types.
func (p *Plan) Payload() map[string]any {
	tests := make([]any, 0, len(p.Tests))
	for _, e := range p.Tests {
		overlays := make([]any, len(e.Overlays))
		for i, o := range e.Overlays {
			overlays[i] = o
		}
		tests = append(tests, map[string]any{
			"name":        e.Name,
			"kind":        e.Kind,
			"overlays":    overlays,
			"project_dir": e.ProjectDir,
		})
	}
	return map[string]any{"tests": tests}
}
