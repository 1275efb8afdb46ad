package fsutil

import (
	"testing"
	"testing/fstest"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, p := range []string{
		"zephyr/test/base32/BUILD.hcl",
		"zephyr/test/base32/boards/native_posix.overlay",
		"zephyr/test/ap_power/BUILD.hcl",
		"zephyr/test/ap_power/BUILD.hcl.orig",
		"zephyr/program/nissa/BUILD.hcl",
		"BUILD.hcl",
		"zephyr/test/BUILD.hcl/placeholder",
		"zephyr/test/drivers/boards/native_posix.overlay",
	} {
		fsys[p] = &fstest.MapFile{}
	}

	testCases := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:    "every script",
			pattern: "**/BUILD.hcl",
			expected: []string{
				"BUILD.hcl",
				"zephyr/program/nissa/BUILD.hcl",
				"zephyr/test/ap_power/BUILD.hcl",
				"zephyr/test/base32/BUILD.hcl",
			},
		},
		{
			name:    "tests only",
			pattern: "zephyr/test/*/BUILD.hcl",
			expected: []string{
				"zephyr/test/ap_power/BUILD.hcl",
				"zephyr/test/base32/BUILD.hcl",
			},
		},
		{
			name:     "no match",
			pattern:  "**/BUILD.py",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := FindFiles(fsys, tc.pattern)
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Empty(t, files)
				return
			}
			assert.Equal(t, tc.expected, files)
		})
	}
}

func TestFindFiles_BadPattern(t *testing.T) {
	_, err := FindFiles(fstest.MapFS{}, "zephyr/[")
	require.Error(t, err)
	assert.ErrorIs(t, err, doublestar.ErrBadPattern)
}

func TestFindFiles_EmptyPatternPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFiles(fstest.MapFS{}, "") })
}
