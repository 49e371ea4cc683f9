package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/lp/internal/config"
	lperrors "github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
	"github.com/rileyhilliard/lp/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const vault = `Work/ [id: 100]
URL: http://group
Work/Server1 [id: 101]
Username: admin
Password: hunter2
URL: ssh://server1
Personal/Email [id: 102]
Username: me@example.com
Password: p4ss
`

func TestLogin_PasswordFromEnvironment(t *testing.T) {
	runner := setupCLI(t)
	runner.OnOnce("status", "Not logged in.\n")
	runner.OnOnce("status", "Not logged in.\n")
	runner.On("login", "Success: Logged in as user@example.com.\n")
	t.Setenv("LP_PASSWORD", "s3cret")

	stdout, _, err := runCLI(t, "login", "user@example.com")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as user@example.com")

	var login string
	for _, c := range runner.Calls {
		if strings.Contains(c.Line, " login ") {
			login = c.Line
			assert.Equal(t, "s3cret\n", c.Stdin)
		}
	}
	assert.Equal(t, "LPASS_DISABLE_PINENTRY=1 lpass login 'user@example.com'", login)
	assert.Equal(t, 1, runner.CountMatching("lpass sync"))
}

func TestLogin_EmailFromEnvironmentAndPrompt(t *testing.T) {
	runner := setupCLI(t)
	runner.OnOnce("status", "Not logged in.\n")
	runner.OnOnce("status", "Not logged in.\n")
	runner.On("login", "Success: Logged in as env@example.com.\n")
	t.Setenv("LP_EMAIL", "env@example.com")
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }

	_, stderr, err := runCLI(t, "login", "--trust")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Master password for env@example.com")
	assert.Equal(t, 1, runner.CountMatching("lpass login --trust 'env@example.com'"))
}

func TestLogin_NoEmail(t *testing.T) {
	setupCLI(t)

	_, _, err := runCLI(t, "login")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrInput))
}

func TestLogin_NoPasswordWithoutTerminal(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", "Not logged in.\n")

	_, _, err := runCLI(t, "login", "user@example.com")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrInput))
	assert.Zero(t, runner.CountMatching(" login "))
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)

	stdout, _, err := runCLI(t, "login", "user@example.com")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Already logged in")
	assert.Zero(t, runner.CountMatching(" login "))
	assert.Equal(t, 1, runner.CountMatching("lpass sync"))
}

func TestLogin_Failure(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", "Not logged in.\n")
	runner.Fail("login", "Error: Invalid username or password.")
	t.Setenv("LP_PASSWORD", "wrong")

	_, _, err := runCLI(t, "login", "user@example.com")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrLogin))
}

func TestLogout(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)

	stdout, _, err := runCLI(t, "logout")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out")
	assert.Equal(t, 1, runner.CountMatching(`echo "Y" | lpass logout`))
}

func TestLogout_Force(t *testing.T) {
	runner := setupCLI(t)

	_, _, err := runCLI(t, "logout", "--force")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.CountMatching("lpass logout --force"))
	assert.Zero(t, runner.CountMatching("status"))
}

func TestStatus(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", loggedIn)

		stdout, _, err := runCLI(t, "status", "--json")

		require.NoError(t, err)
		var env struct {
			Success bool
			Data    struct {
				LoggedIn bool   `json:"logged_in"`
				Message  string `json:"message"`
			}
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &env))
		assert.True(t, env.Data.LoggedIn)
		assert.Equal(t, "Logged in as user@example.com.", env.Data.Message)
	})

	t.Run("logged out", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", "Not logged in.\n")

		stdout, _, err := runCLI(t, "status")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Not logged in.")
	})
}

func TestCommands_RequireSession(t *testing.T) {
	for _, args := range [][]string{
		{"ls"},
		{"show", "Work/Server1"},
		{"add", "Work/Server2"},
		{"rm", "--yes", "Work/Server1"},
		{"mkgroup", "Finance"},
		{"sync"},
		{"export"},
	} {
		t.Run(args[0], func(t *testing.T) {
			runner := setupCLI(t)
			runner.On("status", "Not logged in.\n")

			_, _, err := runCLI(t, args...)

			require.Error(t, err)
			assert.Equal(t, ErrCodeNotLoggedIn, ErrorToJSON(err).Code)
			assert.Zero(t, runner.CountMatching("show"))
		})
	}
}

func TestLs(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show --expand-multi --all --basic-regexp", vault)

	stdout, _, err := runCLI(t, "ls")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Server1")
	assert.Contains(t, stdout, "Email")
	assert.Contains(t, stdout, "admin")
	assert.NotContains(t, stdout, "hunter2")
	assert.Equal(t, 1, runner.CountMatching("show --expand-multi --all --basic-regexp '.*'"))
	assert.Equal(t, 1, runner.CountMatching("lpass sync"))
}

func TestLs_PasswordsJSON(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", vault)

	stdout, _, err := runCLI(t, "ls", "--passwords", "--json", "Server")

	require.NoError(t, err)
	var env struct {
		Success bool
		Data    []map[string]string
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data, 2)
	assert.Equal(t, map[string]string{
		"id": "101", "name": "Server1", "group": "Work",
		"username": "admin", "password": "hunter2", "url": "ssh://server1",
	}, env.Data[0])
	assert.Equal(t, 1, runner.CountMatching("--basic-regexp 'Server'"))
}

func TestLs_GroupsYAML(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", vault)

	stdout, _, err := runCLI(t, "ls", "--groups", "--yaml")

	require.NoError(t, err)
	var groups []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &groups))
	assert.Equal(t, []map[string]string{{"id": "100", "name": "Work"}}, groups)
}

func TestLs_NothingFound(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.Fail("show", "Error: Could not find specified account(s).")

	stdout, _, err := runCLI(t, "ls", "nope")

	require.NoError(t, err)
	assert.Contains(t, stdout, "No matching entries found")
}

func TestShow(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", "Work/Server1 [id: 101]\nUsername: admin\nPassword: hunter2\n")

	t.Run("hides password by default", func(t *testing.T) {
		stdout, _, err := runCLI(t, "show", "Work/Server1")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Server1")
		assert.Contains(t, stdout, "admin")
		assert.NotContains(t, stdout, "hunter2")
	})

	t.Run("with password", func(t *testing.T) {
		stdout, _, err := runCLI(t, "show", "-p", "Work/Server1")

		require.NoError(t, err)
		assert.Contains(t, stdout, "hunter2")
	})
}

func TestShow_NotFound(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.Fail("show", "Error: Could not find specified account(s).")

	_, _, err := runCLI(t, "show", "nope")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrNotFound))
}

func TestAdd(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show --id", "555\n")

	stdout, _, err := runCLI(t, "add", "Email", "--group", "Personal", "--username", "me@example.com", "--password", `it's a "test"`)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created Personal/Email [id: 555]")

	lines := runner.Lines()
	var add string
	for _, l := range lines {
		if strings.Contains(l, " add ") {
			add = l
		}
	}
	assert.Equal(t, `printf '%s' "Username: me@example.com`+"\n"+`Password: it's a \"test\"" | lpass add --non-interactive --sync=no 'Personal/Email'`, add)
	assert.Equal(t, 1, runner.CountMatching("show --id 'Personal/Email'"))
}

func TestEdit(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", "Work/Server1 [id: 101]\nUsername: admin\nPassword: hunter2\n")

	stdout, _, err := runCLI(t, "edit", "Work/Server1", "--password", "n3w")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Updated Work/Server1 [id: 101]")
	assert.Equal(t, 1, runner.CountMatching(`printf '%s' "Password: n3w" | lpass edit --non-interactive --sync=no 101`))
}

func TestEdit_LeavesOtherFieldsAlone(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", "A/B/Server [id: 7]\nUsername: admin\nNotes: first line\nsecond line\n")

	_, _, err := runCLI(t, "edit", "A/B/Server", "--password", "n3w", "--name", "Srv")

	require.NoError(t, err)
	var edit string
	for _, l := range runner.Lines() {
		if strings.Contains(l, "lpass edit") {
			edit = l
		}
	}
	assert.Equal(t, `printf '%s' "Name: A/B/Srv`+"\n"+`Password: n3w" | lpass edit --non-interactive --sync=no 7`, edit)
	assert.NotContains(t, edit, "Notes:")
	assert.NotContains(t, edit, "Username:")
}

func TestEdit_ClearField(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show", "Work/Server1 [id: 101]\nURL: ssh://server1\n")

	_, _, err := runCLI(t, "edit", "101", "--url", "")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.CountMatching(`printf '%s' "URL: " | lpass edit --non-interactive --sync=no 101`))
}

func TestVerboseEchoGoesToStderr(t *testing.T) {
	setupCLI(t)
	inner := newRunner
	newRunner = func(cfg *config.Config, echo io.Writer, log logger.Logger) exec.Runner {
		fmt.Fprintln(echo, "RUN COMMAND lpass logout --force")
		return inner(cfg, echo, log)
	}

	stdout, stderr, err := runCLI(t, "--verbose", "logout", "--force")

	require.NoError(t, err)
	assert.Contains(t, stderr, "RUN COMMAND")
	assert.NotContains(t, stdout, "RUN COMMAND")
}

func TestEdit_NothingToChange(t *testing.T) {
	runner := setupCLI(t)

	_, _, err := runCLI(t, "edit", "Work/Server1")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrInput))
	assert.Empty(t, runner.Calls)
}

func TestRm(t *testing.T) {
	t.Run("with --yes", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", loggedIn)
		runner.On("show", "Work/Server1 [id: 101]\nUsername: admin\n")

		stdout, _, err := runCLI(t, "rm", "--yes", "Work/Server1")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Deleted Work/Server1")
		assert.Equal(t, 1, runner.CountMatching("lpass rm --sync=no 101"))
	})

	t.Run("refuses without a terminal", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", loggedIn)
		runner.On("show", "Work/Server1 [id: 101]\n")

		_, _, err := runCLI(t, "rm", "Work/Server1")

		assert.True(t, lperrors.IsCode(err, lperrors.ErrInput))
		assert.Zero(t, runner.CountMatching(" rm "))
	})

	t.Run("confirmation declined", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", loggedIn)
		runner.On("show", "Work/Server1 [id: 101]\n")
		isTerminal = func(int) bool { return true }
		var asked string
		confirm = func(title string) (bool, error) {
			asked = title
			return false, nil
		}

		stdout, _, err := runCLI(t, "rm", "Work/Server1")

		require.NoError(t, err)
		assert.Equal(t, "Delete Work/Server1 [id: 101]?", asked)
		assert.Contains(t, stdout, "Aborted")
		assert.Zero(t, runner.CountMatching(" rm "))
	})

	t.Run("group", func(t *testing.T) {
		runner := setupCLI(t)
		runner.On("status", loggedIn)
		runner.On("show", "Work/ [id: 100]\n")

		_, _, err := runCLI(t, "rm", "--yes", "--group", "Work")

		require.NoError(t, err)
		assert.Equal(t, 1, runner.CountMatching("show --expand-multi --all 'Work/'"))
		assert.Equal(t, 1, runner.CountMatching("lpass rm --sync=no 100"))
	})
}

func TestMkgroupAndRename(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("show --id", "300\n")
	runner.On("show --expand-multi", "Finance/ [id: 300]\n")

	stdout, _, err := runCLI(t, "mkgroup", "Finance")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created group Finance [id: 300]")
	assert.Equal(t, 1, runner.CountMatching(`printf '%s' "URL: http://group" | lpass add --non-interactive --sync=no 'Finance/'`))

	stdout, _, err = runCLI(t, "rename-group", "Finance", "Money")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Renamed group to Money")
	assert.Equal(t, 1, runner.CountMatching("lpass edit --non-interactive --sync=no 300"))
}

func TestSyncExportImport(t *testing.T) {
	runner := setupCLI(t)
	runner.On("status", loggedIn)
	runner.On("export", "url,username,password\nssh://server1,admin,hunter2\n")

	_, _, err := runCLI(t, "sync")
	require.NoError(t, err)
	assert.Equal(t, 1, runner.CountMatching("lpass sync"))

	stdout, _, err := runCLI(t, "export")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ssh://server1,admin,hunter2")

	out := filepath.Join(t.TempDir(), "vault.csv")
	_, _, err = runCLI(t, "export", "-o", out)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, _, err = runCLI(t, "import", out)
	require.NoError(t, err)
	assert.Equal(t, 1, runner.CountMatching("lpass import '"+out+"'"))
}

func TestImport_MissingFile(t *testing.T) {
	runner := setupCLI(t)

	_, _, err := runCLI(t, "import", "missing.csv")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrInput))
	assert.Empty(t, runner.Calls)
}

func TestVerboseEchoesCommands(t *testing.T) {
	setupCLI(t)
	var verboseSeen bool
	inner := newRunner
	newRunner = func(cfg *config.Config, echo io.Writer, log logger.Logger) exec.Runner {
		verboseSeen = cfg.Verbose
		return inner(cfg, echo, log)
	}

	_, _, err := runCLI(t, "--verbose", "logout", "--force")

	require.NoError(t, err)
	assert.True(t, verboseSeen)
}

func TestInvalidConfig(t *testing.T) {
	runner := setupCLI(t)
	require.NoError(t, os.WriteFile(".lp.yaml", []byte("output:\n  color: rainbow\n"), 0644))

	_, _, err := runCLI(t, "sync")

	assert.True(t, lperrors.IsCode(err, lperrors.ErrConfig))
	assert.Empty(t, runner.Calls)
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		json       bool
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:     "exit error",
			err:      lperrors.NewExitError(3),
			wantCode: 3,
		},
		{
			name:       "structured error",
			err:        lperrors.New(lperrors.ErrNotFound, "No account matches", "Run 'lp ls'"),
			wantCode:   1,
			wantStderr: "No account matches",
		},
		{
			name:       "json mode",
			err:        lperrors.New(lperrors.ErrNotFound, "No account matches", ""),
			json:       true,
			wantCode:   1,
			wantStdout: `"code": "ENTRY_NOT_FOUND"`,
		},
		{
			name:       "unknown command",
			err:        errors.New(`unknown command "lsit" for "lp"`),
			wantCode:   2,
			wantStderr: "lp --help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := machineMode
			defer func() { machineMode = old }()
			machineMode = tt.json

			var stdout, stderr strings.Builder
			code := reportError(tt.err, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestIsUnknownCommandError(t *testing.T) {
	assert.True(t, isUnknownCommandError(errors.New(`unknown command "foo" for "lp"`)))
	assert.True(t, isUnknownCommandError(errors.New("unknown flag: --foo")))
	assert.True(t, isUnknownCommandError(errors.New("unknown shorthand flag: 'z' in -z")))
	assert.False(t, isUnknownCommandError(errors.New("Not logged in")))
}
