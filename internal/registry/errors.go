package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyName is returned when a test is registered without a name.
	ErrEmptyName = errors.New("registry: test name must not be empty")
	// ErrFrozen is returned when Register is called after Freeze.
	ErrFrozen = errors.New("registry: cannot register into a frozen registry")
	// ErrUnknownKind is returned for a test kind other than host_test or target_test.
	ErrUnknownKind = errors.New("registry: unknown test kind")
)

// DuplicateNameError reports a second registration of an existing name.
type DuplicateNameError struct {
	Name string
	// Source and FirstSource are the scripts of the rejected and the
	// original registration. Either may be empty.
	Source      string
	FirstSource string
}

func (e *DuplicateNameError) Error() string {
	msg := fmt.Sprintf("registry: test %q is already registered", e.Name)
	if e.FirstSource != "" {
		msg += fmt.Sprintf(" (first registered in %s)", e.FirstSource)
	}
	return msg
}

// UnknownOptionError lists every unrecognized option key of one registration.
type UnknownOptionError struct {
	Test string
	Keys []string
}

func (e *UnknownOptionError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	prefix := "registry"
	if e.Test != "" {
		prefix = fmt.Sprintf("registry: test %q", e.Test)
	}
	return fmt.Sprintf("%s: unknown option(s) %s (recognized: %s)",
		prefix, strings.Join(quoted, ", "), strings.Join(knownOptions, ", "))
}

// OptionTypeError reports a recognized option holding a value of the wrong shape.
type OptionTypeError struct {
	Test string
	Key  string
	Want string
	Got  any
}

func (e *OptionTypeError) Error() string {
	prefix := "registry"
	if e.Test != "" {
		prefix = fmt.Sprintf("registry: test %q", e.Test)
	}
	return fmt.Sprintf("%s: option %q must be a %s, got %s", prefix, e.Key, e.Want, describeValue(e.Got))
}

// MissingOverlay is one overlay that did not resolve to a file.
type MissingOverlay struct {
	Test string
	// Path is the overlay as registered.
	Path string
	// Resolved is Path joined with the test's project directory.
	Resolved string
}

// MissingOverlayError carries every missing overlay found by one Freeze.
type MissingOverlayError struct {
	Missing []MissingOverlay
}

// Paths returns the missing overlays as registered, in registration order.
func (e *MissingOverlayError) Paths() []string {
	paths := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		paths[i] = m.Path
	}
	return paths
}

func (e *MissingOverlayError) Error() string {
	lines := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		lines[i] = fmt.Sprintf("test %q: %s", m.Test, m.Resolved)
	}
	return fmt.Sprintf("registry: %d missing overlay(s):\n- %s", len(e.Missing), strings.Join(lines, "\n- "))
}

// NotFrozenError is returned by read operations called before Freeze.
type NotFrozenError struct {
	Op string
}

func (e *NotFrozenError) Error() string {
	return fmt.Sprintf("registry: %s called before Freeze", e.Op)
}
