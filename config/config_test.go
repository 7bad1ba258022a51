package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
seed = 42
inject_scale = 1.0
dt_ms = 1.0

[lif]
v_rest = 0.0
v_reset = 0.0
v_thresh = 1.0
tau_m_ms = 10.0
r_m = 1.0
tau_ref_ms = 2.0

[plasticity]
eta = 0.1
tau_trace_ms = 20.0
tau_elig_ms = 50.0
a_pre = 1.0
a_post = 1.0

[synapse]
w_min = -2.0
w_max = 2.0

[[population]]
name = "in"
size = 4

[[population]]
name = "out"
size = 2

[[wiring]]
kind = "dense"
pre_pop = "in"
post_pop = "out"
w_range = [0.1, 0.3]
delay_ms = 1.0
plastic = true

[[output_binding]]
port = "motor"
source_ids = [4, 5]
readout_period_ms = 50.0
`

func TestLoad_ParsesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.toml")
	require.NoError(t, writeFile(path, sampleTOML))

	root, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, int64(42), root.Seed)
	require.Len(t, root.Populations, 2)
	require.Equal(t, "in", root.Populations[0].Name)
	require.Len(t, root.Wiring, 1)
	require.Equal(t, "dense", root.Wiring[0].Kind)
	require.Len(t, root.OutputBindings, 1)
	require.Equal(t, []int{4, 5}, root.OutputBindings[0].SourceIDs)
}

func TestLoad_RejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, writeFile(path, "dt_ms = 0\n"))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path.toml")
	require.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
