package cli

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/lp/internal/doctor"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/ui"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the lpass install, session and config",
	Long: `Run diagnostic checks for lp:

  - config file location and schema
  - lpass on PATH and a supported version (v1.x)
  - an active lpass session

Examples:
  lp doctor
  lp doctor --fix
  lp doctor --json`,
	Annotations: map[string]string{annotationLenientConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
	Fixed      []string         `json:"fixed,omitempty"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs every check and exits 1 if any of them failed.
func doctorCommand(cmd *cobra.Command) error {
	a := newApp(cmd)

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(Config())...)
	checks = append(checks, doctor.NewLpassChecks(a.runner, a.builder)...)

	results := doctor.RunAll(checks)

	var fixed []string
	if doctorFix {
		var err error
		fixed, err = doctor.FixAll(checks, results)
		if err != nil {
			appLog.Warn("%v", err)
		}
		if len(fixed) > 0 {
			results = doctor.RunAll(checks)
		}
	}

	var err error
	if machineMode {
		err = WriteJSONSuccess(cmd.OutOrStdout(), buildDoctorOutput(results, fixed))
	} else {
		outputDoctorText(cmd, results, fixed)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func buildDoctorOutput(results []doctor.CheckResult, fixed []string) DoctorOutput {
	order, grouped := doctor.GroupByCategory(results)

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(order)),
		Fixed:      fixed,
	}
	for _, cat := range order {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(cmd *cobra.Command, results []doctor.CheckResult, fixed []string) {
	w := cmd.OutOrStdout()

	rows := make([]ui.DoctorCheckRow, len(results))
	for i, r := range results {
		rows[i] = ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.HeaderStyle().Render("lp Diagnostic Report"))
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	for _, name := range fixed {
		printSuccess(w, "Fixed %s", name)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	summary := doctor.Summary(results)
	fmt.Fprintf(w, "%s %s\n", statusSymbol(!doctor.HasIssues(results)), summary)

	if doctor.FixableCount(results) > 0 && !doctorFix {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n",
			ui.MutedStyle().Render("--fix"))
	}
	fmt.Fprintln(w)
}
