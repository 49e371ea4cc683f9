package cli

import (
	"github.com/rileyhilliard/lp/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// yamlMode is set by --yaml on the listing commands, or output.format: yaml.
var yamlMode bool

// writeResult emits data as JSON or YAML when asked to, and otherwise calls
// human to print the terminal rendering.
func writeResult(cmd *cobra.Command, data interface{}, human func()) error {
	switch {
	case machineMode:
		return WriteJSONSuccess(cmd.OutOrStdout(), data)
	case yamlMode || (appConfig != nil && appConfig.Output.Format == "yaml"):
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		human()
		return nil
	}
}

func statusSymbol(ok bool) string {
	if ok {
		return ui.SuccessStyle().Render(ui.SymbolSuccess)
	}
	return ui.ErrorStyle().Render(ui.SymbolFail)
}
