package registry

import (
	"fmt"
	"slices"
	"sort"
)

// OptionDTSOverlays names the list of device-tree overlays applied to a test.
const OptionDTSOverlays = "dts_overlays"

// knownOptions enumerates every option key Register accepts.
var knownOptions = []string{OptionDTSOverlays}

// KnownOptions returns the option keys Register accepts.
func KnownOptions() []string {
	return slices.Clone(knownOptions)
}

// Options is the typed form of the keyword options given to a registration.
type Options struct {
	DTSOverlays []string
}

// ParseOptions converts a loosely typed option bag into Options. Every
// unrecognized key is reported in a single UnknownOptionError.
func ParseOptions(raw map[string]any) (Options, error) {
	var unknown []string
	for key := range raw {
		if !slices.Contains(knownOptions, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Options{}, &UnknownOptionError{Keys: unknown}
	}

	var opts Options
	if v, ok := raw[OptionDTSOverlays]; ok {
		paths, ok := stringList(v)
		if !ok {
			return Options{}, &OptionTypeError{Key: OptionDTSOverlays, Want: "list of non-empty strings", Got: v}
		}
		opts.DTSOverlays = paths
	}
	return opts, nil
}

// stringList accepts nil, []string and []any holding only non-empty strings.
func stringList(v any) ([]string, bool) {
	var out []string
	switch vv := v.(type) {
	case nil:
		return nil, true
	case []string:
		out = slices.Clone(vv)
	case []any:
		out = make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
	default:
		return nil, false
	}
	if slices.Contains(out, "") {
		return nil, false
	}
	return out, true
}

func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
