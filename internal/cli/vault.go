package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/spf13/cobra"
)

var exportOutput string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force a sync with the LastPass servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncCommand(cmd)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vault as CSV (passwords included)",
	Long: `Export the whole vault as CSV, passwords included.

Examples:
  lp export > vault.csv
  lp export -o vault.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportCommand(cmd)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import entries from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importCommand(cmd, args[0])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write the CSV to a file (mode 0600) instead of stdout")
	rootCmd.AddCommand(syncCmd, exportCmd, importCmd)
}

func syncCommand(cmd *cobra.Command) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.client.Sync(); err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"status": "synced"}, func() {
		printSuccess(cmd.OutOrStdout(), "Vault synced")
	})
}

func exportCommand(cmd *cobra.Command) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	csv, err := a.client.Export()
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return writeResult(cmd, map[string]string{"csv": csv}, func() {
			fmt.Fprint(cmd.OutOrStdout(), csv)
		})
	}

	if err := os.WriteFile(exportOutput, []byte(csv), 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrInput,
			"Couldn't write "+exportOutput,
			"Check the directory exists and is writable")
	}
	return writeResult(cmd, map[string]string{"file": exportOutput}, func() {
		printSuccess(cmd.OutOrStdout(), "Exported vault to %s", exportOutput)
	})
}

func importCommand(cmd *cobra.Command, file string) error {
	if _, err := os.Stat(file); err != nil {
		return errors.WrapWithCode(err, errors.ErrInput,
			"Can't read "+file,
			"Check the path to the CSV file")
	}

	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.client.Import(file); err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"file": file}, func() {
		printSuccess(cmd.OutOrStdout(), "Imported %s", file)
	})
}
