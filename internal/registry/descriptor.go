package registry

import (
	"fmt"
	"path/filepath"
	"slices"
)

// Kind says where a registered test executes.
type Kind int

const (
	// HostTest runs on the build machine.
	HostTest Kind = iota + 1
	// TargetTest runs on the board or its emulator.
	TargetTest
)

var kindNames = map[Kind]string{
	HostTest:   "host_test",
	TargetTest: "target_test",
}

// String returns the registration keyword for the kind, e.g. "host_test".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a registration keyword back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TestDescriptor is one registered test.
type TestDescriptor struct {
	Name string
	Kind Kind
	// OverlayPaths lists device-tree overlays in application order. Later
	// overlays may override fields set by earlier ones.
	OverlayPaths []string
	// ProjectDir is the directory of the registration script. Relative
	// overlay paths are resolved against it.
	ProjectDir string
	// Source is the registration script that declared the test, if any.
	Source string
}

func (d TestDescriptor) clone() TestDescriptor {
	d.OverlayPaths = slices.Clone(d.OverlayPaths)
	return d
}

// ResolveOverlay returns the path of an overlay relative to the
// filesystem collaborator's root.
func (d TestDescriptor) ResolveOverlay(path string) string {
	if filepath.IsAbs(path) || d.ProjectDir == "" || d.ProjectDir == "." {
		return path
	}
	return filepath.Join(d.ProjectDir, path)
}
