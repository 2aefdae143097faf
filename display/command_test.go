package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(args ...string) *cobra.Command {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	child.Flags().Bool("yaml", false, "")
	root.AddCommand(child)
	root.SetArgs(append([]string{"child"}, args...))
	return root
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		args []string
		want Format
	}{
		{nil, FormatText},
		{[]string{"--json"}, FormatJSON},
		{[]string{"--yaml"}, FormatYAML},
		{[]string{"--yaml", "--json"}, FormatJSON},
	}
	for _, tt := range tests {
		root := newCommand(tt.args...)
		cmd, err := root.ExecuteC()
		require.NoError(t, err)
		assert.Equal(t, tt.want, OutputFormat(cmd), "%v", tt.args)
	}
	assert.Equal(t, FormatText, OutputFormat(nil))
}

func TestWrite(t *testing.T) {
	v := struct {
		ID    string  `json:"id" yaml:"id"`
		Depth float64 `json:"depth" yaml:"depth"`
	}{"BH1", 12.5}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v, FormatJSON))
	assert.JSONEq(t, `{"id":"BH1","depth":12.5}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, v, FormatYAML))
	assert.Equal(t, "id: BH1\ndepth: 12.5\n", buf.String())

	assert.Error(t, Write(&buf, v, FormatText))
}
