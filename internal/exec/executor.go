package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/lp/internal/errors"
)

// commandNotFoundPatterns are regex patterns to detect "command not found" errors
// from various shells. These require exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)sh: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// IsCommandNotFound checks if the error output indicates a missing command.
// Returns the command name (if extractable) and whether it's a command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	// Exit code 127 is the standard for command not found
	if exitCode != 127 {
		return "", false
	}

	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}

	return "", true
}

// HandleExecError turns a "command not found" failure into an ErrSpawn error
// naming the missing binary. Any other failure returns nil.
func HandleExecError(cmdErr *CommandError) error {
	cmdName, notFound := IsCommandNotFound(cmdErr.Stderr, cmdErr.ExitCode)
	if !notFound {
		return nil
	}

	if cmdName == "" {
		cmdName = firstProgram(cmdErr.Command)
	}

	suggestion := fmt.Sprintf(`'%s' wasn't found in PATH.

Fixes:

1. Install the LastPass CLI (https://github.com/lastpass/lastpass-cli)

2. Point lp at the binary explicitly in ~/.config/lp/config.yaml:
   binary: /usr/local/bin/lpass

3. Run 'lp doctor' to check the installation`, cmdName)

	return errors.WrapWithCode(cmdErr, errors.ErrSpawn,
		fmt.Sprintf("'%s' not found", cmdName),
		suggestion)
}

// firstProgram extracts the executable from a command line, skipping
// VAR=value prefixes and anything before the last pipe.
func firstProgram(line string) string {
	if idx := strings.LastIndex(line, " | "); idx >= 0 {
		line = line[idx+3:]
	}
	for _, field := range strings.Fields(line) {
		if strings.Contains(field, "=") {
			continue
		}
		return field
	}
	return "command"
}
