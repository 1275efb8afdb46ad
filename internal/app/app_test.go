package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/zregistry/internal/plan"
	"github.com/vk/zregistry/internal/registry"
)

var base32Files = map[string]string{
	"zephyr/test/base32/BUILD.hcl": `
host_test "base32" {
  dts_overlays = ["boards/native_posix.overlay"]
}
`,
	"zephyr/test/base32/boards/native_posix.overlay": "/ { };\n",
	"zephyr/test/pdc/BUILD.hcl": `
target_test "pdc" {}
`,
}

func TestRun_PrintsPlan(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testApp, out, logs := SetupAppTest(t, Config{Output: plan.FormatJSON}, base32Files)

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)

	var p plan.Plan
	require.NoError(t, json.Unmarshal([]byte(out.String()), &p))
	require.Len(t, p.Tests, 2)
	assert.Equal(t, "base32", p.Tests[0].Name)
	assert.Equal(t, []string{"boards/native_posix.overlay"}, p.Tests[0].Overlays)
	assert.Equal(t, "zephyr/test/base32", p.Tests[0].ProjectDir)
	assert.Equal(t, "pdc", p.Tests[1].Name)

	assert.Contains(t, logs.String(), "Discovery pass complete.")
	assert.NotContains(t, out.String(), "Discovery pass complete.", "logs must not leak into the plan output")
}

func TestRun_FiltersByKind(t *testing.T) {
	t.Parallel()

	testApp, out, _ := SetupAppTest(t, Config{Kind: "target_test"}, base32Files)

	require.NoError(t, testApp.Run(context.Background()))
	assert.Contains(t, out.String(), "pdc")
	assert.NotContains(t, out.String(), "base32")
}

func TestRun_MissingOverlayFails(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"zephyr/test/base32/BUILD.hcl": base32Files["zephyr/test/base32/BUILD.hcl"],
	}
	testApp, out, logs := SetupAppTest(t, Config{}, files)

	err := testApp.Run(context.Background())

	require.Error(t, err)
	var missing *registry.MissingOverlayError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"boards/native_posix.overlay"}, missing.Paths())
	assert.Contains(t, logs.String(), "Discovery failed.")
	assert.Empty(t, out.String(), "no plan is written after a failed discovery")
}

func TestRun_UnknownExplicitTest(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Config{Tests: []string{"base32", "base64"}}, base32Files)

	err := testApp.Run(context.Background())

	var unknown *plan.UnknownTestsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"base64"}, unknown.Names)
}

func TestDiscover_RootMustBeDirectory(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{Root: "/definitely/not/here"})
	require.NoError(t, err)
	testApp, err := NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg)
	require.NoError(t, err)

	_, err = testApp.Discover(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing root")
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			cfg:  Config{Root: "zephyr"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "**/BUILD.hcl", cfg.Pattern)
				assert.Equal(t, plan.FormatText, cfg.Output)
				assert.Empty(t, cfg.PublishEvent)
			},
		},
		{
			name: "publish event defaults when publishing",
			cfg:  Config{Root: "zephyr", PublishURL: "http://localhost:3000"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "plan", cfg.PublishEvent)
			},
		},
		{name: "missing root", cfg: Config{}, expectErr: true},
		{name: "bad output", cfg: Config{Root: "zephyr", Output: "xml"}, expectErr: true},
		{name: "bad kind", cfg: Config{Root: "zephyr", Kind: "unit_test"}, expectErr: true},
		{name: "bad name pattern", cfg: Config{Root: "zephyr", NamePattern: "[abc"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestNewApp_InvalidPublisher(t *testing.T) {
	cfg, err := NewConfig(Config{Root: "zephyr", PublishURL: "not-a-url"})
	require.NoError(t, err)

	_, err = NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to configure plan publisher")
}
