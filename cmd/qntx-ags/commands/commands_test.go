package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qntx-ags/ags/storage"
	"github.com/teranos/qntx-ags/am"
	qntxtest "github.com/teranos/qntx-ags/internal/testing"
	ixags "github.com/teranos/qntx-ags/ixgest/ags"
)

// setupWorkspace isolates config and points the database at a temp file.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("AGS_DATABASE_PATH", filepath.Join(dir, "test.db"))

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	am.Reset()
	t.Cleanup(am.Reset)
	return dir
}

// execute runs args against a fresh root so persistent flags start from their defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "qntx-ags", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().CountP("verbose", "v", "")
	root.PersistentFlags().Bool("json", false, "")
	root.PersistentFlags().Bool("yaml", false, "")
	root.AddCommand(IxCmd, AxCmd, SoCmd, AmCmd, DbCmd, VersionCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestIngestQueryExport(t *testing.T) {
	dir := setupWorkspace(t)
	site := filepath.Join(dir, "site.ags")
	require.NoError(t, os.WriteFile(site, []byte(qntxtest.SampleAGS), 0644))

	out, err := execute(t, "ix", site, "--json")
	require.NoError(t, err)
	var results []ixags.ProcessingResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Stats.Boreholes)
	assert.Equal(t, "4.1", results[0].AGSVersion)

	out, err = execute(t, "ax", "boreholes", "--json")
	require.NoError(t, err)
	var boreholes []storage.BoreholeRecord
	require.NoError(t, json.Unmarshal([]byte(out), &boreholes))
	require.Len(t, boreholes, 2)
	assert.Equal(t, "BH1", boreholes[0].ID)
	assert.Equal(t, 2, boreholes[0].StrataCount)

	out, err = execute(t, "ax", "borehole", "BH2", "--json")
	require.NoError(t, err)
	var bh2 storage.BoreholeRecord
	require.NoError(t, json.Unmarshal([]byte(out), &bh2))
	require.NotNil(t, bh2.Top.X)
	assert.InDelta(t, 105.5, *bh2.Top.X, 1e-9)
	assert.Len(t, bh2.Strata, 1)

	out, err = execute(t, "ax", "samples", "--id", "BH1", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "chemical_name: Arsenic")

	csvPath := filepath.Join(dir, "strata.csv")
	_, err = execute(t, "so", "csv", "strata", csvPath, "--delimiter", ";")
	require.NoError(t, err)
	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "import_id;loca_id;"))

	out, err = execute(t, "db", "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"imports": 1`)
}

func TestIngestDryRunAndErrors(t *testing.T) {
	dir := setupWorkspace(t)
	site := filepath.Join(dir, "site.ags")
	require.NoError(t, os.WriteFile(site, []byte(qntxtest.SampleAGS), 0644))

	_, err := execute(t, "ix", site, "--dry-run", "--json")
	require.NoError(t, err)
	IxCmd.Flags().Set("dry-run", "false")

	_, err = os.Stat(filepath.Join(dir, "test.db"))
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")

	_, err = execute(t, "ix", site, "--watch")
	assert.Error(t, err, "--watch needs a directory")
	IxCmd.Flags().Set("watch", "false")

	_, err = execute(t, "so", "csv", "wells", filepath.Join(dir, "x.csv"))
	assert.Error(t, err)
}

func TestAmSetAndCheck(t *testing.T) {
	dir := setupWorkspace(t)
	path := filepath.Join(dir, "am.toml")

	_, err := execute(t, "am", "set", "import.blank_geology", "NR", "--file", path)
	require.NoError(t, err)
	amSetCmd.Flags().Set("file", "")

	out, err := execute(t, "am", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"blank_geology": "NR"`, "project am.toml in the working directory is loaded")

	_, err = execute(t, "am", "check", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[import]\nblank_geolgy = \"NR\"\n"), 0644))
	_, err = execute(t, "am", "check", path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}
