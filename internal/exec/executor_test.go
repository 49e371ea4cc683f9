package exec

import (
	"testing"

	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCommandNotFound(t *testing.T) {
	tests := []struct {
		name      string
		stderr    string
		exitCode  int
		wantCmd   string
		wantFound bool
	}{
		{
			name:      "bash command not found",
			stderr:    "bash: lpass: command not found",
			exitCode:  127,
			wantCmd:   "lpass",
			wantFound: true,
		},
		{
			name:      "zsh command not found",
			stderr:    "zsh: command not found: lpass",
			exitCode:  127,
			wantCmd:   "lpass",
			wantFound: true,
		},
		{
			name:      "dash not found",
			stderr:    "sh: 1: lpass: not found",
			exitCode:  127,
			wantCmd:   "lpass",
			wantFound: true,
		},
		{
			name:      "bash as sh",
			stderr:    "/bin/sh: line 1: lpass: command not found",
			exitCode:  127,
			wantCmd:   "lpass",
			wantFound: true,
		},
		{
			name:      "exit code 127 no pattern match",
			stderr:    "some other error message",
			exitCode:  127,
			wantCmd:   "",
			wantFound: true,
		},
		{
			name:      "lpass error is not command not found",
			stderr:    "Error: Could not find specified account(s).",
			exitCode:  1,
			wantCmd:   "",
			wantFound: false,
		},
		{
			name:      "pattern without exit 127",
			stderr:    "bash: lpass: command not found",
			exitCode:  1,
			wantCmd:   "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, found := IsCommandNotFound(tt.stderr, tt.exitCode)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantCmd, cmd)
		})
	}
}

func TestHandleExecError_CommandNotFound(t *testing.T) {
	err := HandleExecError(&CommandError{
		Command:  "lpass sync",
		Stderr:   "bash: lpass: command not found",
		ExitCode: 127,
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpawn))
	assert.Contains(t, err.Error(), "'lpass' not found")
	assert.Contains(t, err.Error(), "lp doctor")
}

func TestHandleExecError_NotCommandNotFound(t *testing.T) {
	err := HandleExecError(&CommandError{
		Command:  "lpass show 'x'",
		Stderr:   "Error: Could not find specified account(s).",
		ExitCode: 1,
	})

	assert.NoError(t, err)
}

func TestHandleExecError_ExtractsCommandFromInput(t *testing.T) {
	err := HandleExecError(&CommandError{
		Command:  "LPASS_DISABLE_PINENTRY=1 lpass login 'me'",
		Stderr:   "something unrecognised",
		ExitCode: 127,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "'lpass' not found")
}

func TestFirstProgram(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"lpass sync", "lpass"},
		{"LPASS_DISABLE_PINENTRY=1 lpass login 'u'", "lpass"},
		{`echo "Y" | lpass logout`, "lpass"},
		{"<redacted> | /opt/lpass add --non-interactive", "/opt/lpass"},
		{"", "command"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, firstProgram(tt.line))
		})
	}
}
