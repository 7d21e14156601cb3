package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "YAML config file (overrides LEARNNEXT_CONFIG)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringP("output", "o", outputText, "output format: text or json")
}

// printOutput writes value as indented JSON, or text when the format is text.
func printOutput(cmd *cobra.Command, text string, value any) error {
	format := flagString(cmd, "output")
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case outputJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "", outputText:
		_, err := fmt.Fprintln(out, text)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// inputText joins args, or reads stdin when the only arg is "-" or there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		bits, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(bits), nil
	}
	return strings.Join(args, " "), nil
}

// fileOrFlag returns the contents of --<name>-file when set, else --<name>.
func fileOrFlag(cmd *cobra.Command, name string) (string, error) {
	if path, _ := cmd.Flags().GetString(name + "-file"); path != "" {
		bits, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(bits), nil
	}
	value, _ := cmd.Flags().GetString(name)
	return value, nil
}

// flagString reads a local or inherited persistent flag.
func flagString(cmd *cobra.Command, name string) string {
	if flag := cmd.Flag(name); flag != nil {
		return flag.Value.String()
	}
	return ""
}
