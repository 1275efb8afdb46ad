package registry

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSChecker_Exists(t *testing.T) {
	root := t.TempDir()
	overlay := filepath.Join(root, "boards", "native_posix.overlay")
	require.NoError(t, os.MkdirAll(filepath.Dir(overlay), 0755))
	require.NoError(t, os.WriteFile(overlay, []byte("/ { };\n"), 0644))

	c := OSChecker{Root: root}

	ok, err := c.Exists("boards/native_posix.overlay")
	require.NoError(t, err)
	assert.True(t, ok, "relative path under root")

	ok, err = c.Exists(overlay)
	require.NoError(t, err)
	assert.True(t, ok, "absolute path")

	ok, err = c.Exists("boards/missing.overlay")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists("boards")
	require.NoError(t, err)
	assert.False(t, ok, "a directory is not an overlay")
}

func TestFSChecker_Exists(t *testing.T) {
	c := FSChecker{FS: fstest.MapFS{
		"zephyr/test/base32/boards/native_posix.overlay": &fstest.MapFile{},
	}}

	testCases := []struct {
		path   string
		exists bool
	}{
		{path: "zephyr/test/base32/boards/native_posix.overlay", exists: true},
		{path: "zephyr/test/base32/./boards/native_posix.overlay", exists: true},
		{path: "zephyr/test/base32/boards", exists: false},
		{path: "zephyr/test/base32/boards/other.overlay", exists: false},
		{path: "../outside.overlay", exists: false},
		{path: "/abs/native_posix.overlay", exists: false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			ok, err := c.Exists(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.exists, ok)
		})
	}
}
