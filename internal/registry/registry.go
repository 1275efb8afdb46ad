package registry

import (
	"fmt"
	"iter"

	"go.uber.org/multierr"
)

// Registry holds every test registered during one discovery pass.
type Registry struct {
	checker FileChecker
	tests   []TestDescriptor
	byName  map[string]int
	frozen  bool
}

// New creates an empty, mutable Registry. Freeze validates overlays with
// checker; a nil checker means the host filesystem relative to the working
// directory.
func New(checker FileChecker) *Registry {
	if checker == nil {
		checker = OSChecker{}
	}
	return &Registry{
		checker: checker,
		byName:  make(map[string]int),
	}
}

// Register adds a test whose overlays are resolved against the checker's
// root. options may only contain keys listed by KnownOptions.
func (r *Registry) Register(name string, kind Kind, options map[string]any) error {
	return r.register(name, kind, options, "", "")
}

// RegisterOptions is Register with already typed options.
func (r *Registry) RegisterOptions(name string, kind Kind, opts Options) error {
	return r.add(newDescriptor(name, kind, opts, "", ""))
}

// Scope returns a handle that registers tests on behalf of one
// registration script located in projectDir.
func (r *Registry) Scope(projectDir, source string) *Scope {
	return &Scope{reg: r, projectDir: projectDir, source: source}
}

func (r *Registry) register(name string, kind Kind, options map[string]any, projectDir, source string) error {
	if r.frozen {
		return ErrFrozen
	}
	if name == "" {
		return ErrEmptyName
	}
	opts, err := ParseOptions(options)
	if err != nil {
		switch e := err.(type) {
		case *UnknownOptionError:
			e.Test = name
		case *OptionTypeError:
			e.Test = name
		}
		return err
	}
	return r.add(newDescriptor(name, kind, opts, projectDir, source))
}

func newDescriptor(name string, kind Kind, opts Options, projectDir, source string) TestDescriptor {
	return TestDescriptor{
		Name:         name,
		Kind:         kind,
		OverlayPaths: opts.DTSOverlays,
		ProjectDir:   projectDir,
		Source:       source,
	}
}

func (r *Registry) add(d TestDescriptor) error {
	if r.frozen {
		return ErrFrozen
	}
	if d.Name == "" {
		return ErrEmptyName
	}
	if !d.Kind.valid() {
		return fmt.Errorf("test %q: %w: %s", d.Name, ErrUnknownKind, d.Kind)
	}
	if i, exists := r.byName[d.Name]; exists {
		return &DuplicateNameError{Name: d.Name, Source: d.Source, FirstSource: r.tests[i].Source}
	}
	r.byName[d.Name] = len(r.tests)
	r.tests = append(r.tests, d.clone())
	return nil
}

// Freeze checks the overlays of every registered test and makes the
// registry read-only. All missing overlays are reported together in one
// *MissingOverlayError; the registry stays mutable when Freeze fails.
// Freezing a frozen registry is a no-op.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}

	var errs error
	var missing []MissingOverlay
	for _, d := range r.tests {
		for _, p := range d.OverlayPaths {
			resolved := d.ResolveOverlay(p)
			ok, err := r.checker.Exists(resolved)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("registry: checking overlay %s of test %q: %w", resolved, d.Name, err))
				continue
			}
			if !ok {
				missing = append(missing, MissingOverlay{Test: d.Name, Path: p, Resolved: resolved})
			}
		}
	}
	if len(missing) > 0 {
		errs = multierr.Append(errs, &MissingOverlayError{Missing: missing})
	}
	if errs != nil {
		return errs
	}

	r.frozen = true
	return nil
}

// Frozen reports whether Freeze has succeeded.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.tests)
}

// Lookup returns the test registered under name. ok is false if there is
// none. Lookup fails with *NotFrozenError before Freeze.
func (r *Registry) Lookup(name string) (d TestDescriptor, ok bool, err error) {
	if !r.frozen {
		return TestDescriptor{}, false, &NotFrozenError{Op: "Lookup"}
	}
	i, ok := r.byName[name]
	if !ok {
		return TestDescriptor{}, false, nil
	}
	return r.tests[i].clone(), true, nil
}

// All returns a sequence over every test in registration order. Each call
// returns a new sequence over the same frozen snapshot, and the sequence can
// be ranged over any number of times.
func (r *Registry) All() (iter.Seq[TestDescriptor], error) {
	if !r.frozen {
		return nil, &NotFrozenError{Op: "All"}
	}
	tests := r.tests
	return func(yield func(TestDescriptor) bool) {
		for _, d := range tests {
			if !yield(d.clone()) {
				return
			}
		}
	}, nil
}

// Scope registers tests on behalf of one registration script.
type Scope struct {
	reg        *Registry
	projectDir string
	source     string
}

// Register is Registry.Register with the scope's project directory and source.
func (s *Scope) Register(name string, kind Kind, options map[string]any) error {
	return s.reg.register(name, kind, options, s.projectDir, s.source)
}

// RegisterOptions is Registry.RegisterOptions with the scope's project
// directory and source.
func (s *Scope) RegisterOptions(name string, kind Kind, opts Options) error {
	return s.reg.add(newDescriptor(name, kind, opts, s.projectDir, s.source))
}

// Source returns the registration script the scope belongs to.
func (s *Scope) Source() string {
	return s.source
}
