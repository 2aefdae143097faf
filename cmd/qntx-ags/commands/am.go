package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/am"
	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
	"github.com/teranos/qntx-ags/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage qntx-ags configuration",
	Long: sym.AM + ` am - Manage qntx-ags configuration ("I am")

Configuration sources (later overrides earlier):
1. Built-in defaults
2. /etc/qntx-ags/am.toml
3. ~/.qntx-ags/am.toml
4. am.toml in the working directory or the nearest parent
5. AGS_* environment variables (AGS_DATABASE_PATH for database.path)

Examples:
  qntx-ags am show                          # Effective configuration as TOML
  qntx-ags am show --json                   # ... as JSON
  qntx-ags am where                         # Which source set each key
  qntx-ags am set import.blank_geology NR   # Persist to ~/.qntx-ags/am.toml
  qntx-ags am check ./am.toml               # Report unknown keys and invalid values`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each configuration value comes from",
	Args:  cobra.NoArgs,
	RunE:  runAmWhere,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Long:  "Write key = value to ~/.qntx-ags/am.toml (or --file). The previous file is kept as .back1..3.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAmSet,
}

var amCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a config file for unknown keys and invalid values",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmCheck,
}

func init() {
	amSetCmd.Flags().String("file", "", "Config file to write (default: ~/.qntx-ags/am.toml)")

	AmCmd.AddCommand(amShowCmd, amWhereCmd, amSetCmd, amCheckCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), cfg, format)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# qntx-ags configuration\n%s", string(data))
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return err
	}

	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), intro, format)
	}

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = am.UserConfigPath()
	}
	if path == "" {
		return errors.New("could not determine home directory; pass --file")
	}

	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()
	logger.Infow("configuration updated", "key", args[0], logger.FieldFile, path)

	pterm.Success.Printf("%s = %s written to %s\n", args[0], args[1], path)
	if env := am.EnvVar(args[0]); envSet(env) {
		pterm.Warning.Printf("%s is set and overrides this value\n", env)
	}
	return nil
}

func runAmCheck(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		path = am.UserConfigPath()
	}

	unknown, err := am.CheckFile(path)
	if err != nil {
		return err
	}

	if format := display.OutputFormat(cmd); format != display.FormatText {
		return display.Write(cmd.OutOrStdout(), map[string]interface{}{"file": path, "unknown_keys": unknown}, format)
	}

	if len(unknown) == 0 {
		pterm.Success.Printf("%s is valid\n", path)
		return nil
	}
	for _, key := range unknown {
		logger.Warnw("unknown configuration key", "key", key, logger.FieldFile, path)
		pterm.Warning.Printf("unknown key %s (ignored)\n", key)
	}
	return errors.Newf("%s has %d unknown keys", path, len(unknown))
}
