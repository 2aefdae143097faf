// Package display renders command results as terminal tables, JSON or YAML.
package display

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/qntx-ags/errors"
)

// Format is a machine-readable output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// OutputFormat reads the --json and --yaml flags, local or inherited from the root.
// --json wins when both are given.
func OutputFormat(cmd *cobra.Command) Format {
	if cmd == nil {
		return FormatText
	}
	if flagSet(cmd, "json") {
		return FormatJSON
	}
	if flagSet(cmd, "yaml") {
		return FormatYAML
	}
	return FormatText
}

// ShouldOutputJSON reports whether the command was asked for JSON output
func ShouldOutputJSON(cmd *cobra.Command) bool {
	return OutputFormat(cmd) == FormatJSON
}

func flagSet(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		v, _ := cmd.Root().PersistentFlags().GetBool(name)
		return v
	}
	return false
}

// Write marshals v to w in a machine-readable format.
func Write(w io.Writer, v interface{}, format Format) error {
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(v)
	default:
		return errors.NewInvalidRequestError("format %q is not machine-readable", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", format)
	}
	_, err = w.Write(data)
	return err
}

// OutputJSON marshals and prints JSON to w
func OutputJSON(w io.Writer, v interface{}) error {
	if err := Write(w, v, FormatJSON); err != nil {
		return fmt.Errorf("failed to output JSON: %w", err)
	}
	return nil
}
