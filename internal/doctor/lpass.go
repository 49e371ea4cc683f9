package doctor

import (
	stderrors "errors"
	"fmt"
	osexec "os/exec"
	"regexp"
	"strings"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
)

// SupportedMajor is the lpass major version this client speaks to.
const SupportedMajor = "v1."

var versionPattern = regexp.MustCompile(`v(\d+\.\d+(?:\.\d+)?)`)

// LpassBinaryCheck verifies the lpass executable is on PATH.
type LpassBinaryCheck struct {
	Binary   string
	LookPath func(string) (string, error)
}

func (c *LpassBinaryCheck) Name() string     { return "lpass_binary" }
func (c *LpassBinaryCheck) Category() string { return "LPASS" }

func (c *LpassBinaryCheck) Run() CheckResult {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = osexec.LookPath
	}
	binary := c.Binary
	if binary == "" {
		binary = command.DefaultBinary
	}

	path, err := lookPath(binary)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot find the %q executable in the path!", binary),
			Suggestion: "Install the LastPass CLI (brew install lastpass-cli, apt install lastpass-cli) or set 'binary' in your config",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "lpass found at " + path,
	}
}

func (c *LpassBinaryCheck) Fix() error {
	return nil // Package installation is out of scope
}

// LpassVersionCheck verifies the installed lpass is a supported major version.
type LpassVersionCheck struct {
	Runner  exec.Runner
	Builder *command.Builder
}

func (c *LpassVersionCheck) Name() string     { return "lpass_version" }
func (c *LpassVersionCheck) Category() string { return "LPASS" }

func (c *LpassVersionCheck) Run() CheckResult {
	version, err := CheckVersion(c.Runner, c.Builder)
	if err != nil {
		msg, suggestion := err.Error(), ""
		var lpErr *errors.Error
		if stderrors.As(err, &lpErr) {
			msg, suggestion = lpErr.Message, lpErr.Suggestion
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "LastPass CLI " + version,
	}
}

func (c *LpassVersionCheck) Fix() error {
	return nil
}

// LpassSessionCheck reports whether lpass is logged in.
type LpassSessionCheck struct {
	Runner  exec.Runner
	Builder *command.Builder
}

func (c *LpassSessionCheck) Name() string     { return "lpass_session" }
func (c *LpassSessionCheck) Category() string { return "LPASS" }

func (c *LpassSessionCheck) Run() CheckResult {
	out, err := c.Runner.Run(c.Builder.Status(false))
	if err != nil || !strings.Contains(out, "Logged in") {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Not logged in",
			Suggestion: "Run 'lp login <email>'",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: strings.TrimSpace(out),
	}
}

func (c *LpassSessionCheck) Fix() error {
	return nil // Logging in needs the master password
}

// CheckVersion runs "lpass --version" and fails unless it reports v1.
// It returns the parsed version number.
func CheckVersion(runner exec.Runner, builder *command.Builder) (string, error) {
	out, err := runner.Run(builder.Version())
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrDependency,
			fmt.Sprintf("Cannot find the %q executable in the path!", builder.Binary),
			"Install the LastPass CLI or run 'lp doctor'")
	}
	if !strings.Contains(out, SupportedMajor) {
		return "", errors.New(errors.ErrDependency,
			fmt.Sprintf("The LastPass CLI you have installed [%s] is not supported", strings.TrimSpace(out)),
			"Please install LastPass CLI v1")
	}
	return ParseVersion(out), nil
}

// ParseVersion extracts "1.3.4" from "LastPass CLI v1.3.4".
func ParseVersion(output string) string {
	if m := versionPattern.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return "unknown"
}

// NewLpassChecks creates the lpass checks in dependency order.
func NewLpassChecks(runner exec.Runner, builder *command.Builder) []Check {
	return []Check{
		&LpassBinaryCheck{Binary: builder.Binary},
		&LpassVersionCheck{Runner: runner, Builder: builder},
		&LpassSessionCheck{Runner: runner, Builder: builder},
	}
}
