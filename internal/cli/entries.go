package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/ui"
	"github.com/rileyhilliard/lp/pkg/lastpass"
	"github.com/spf13/cobra"
)

// confirm asks a yes/no question. Tests replace it.
var confirm = func(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// entryFlags holds the field flags shared by add and edit.
type entryFlags struct {
	Name     string
	Username string
	Password string
	URL      string
	Notes    string
	Group    string
}

func addEntryFlags(cmd *cobra.Command, f *entryFlags) {
	cmd.Flags().StringVar(&f.Username, "username", "", "username")
	cmd.Flags().StringVar(&f.Password, "password", "", "password")
	cmd.Flags().StringVar(&f.URL, "url", "", "URL")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "notes")
}

var (
	lsGroups     bool
	lsPasswords  bool
	lsYAML       bool
	showPassword bool
	showYAML     bool
	addFlags     entryFlags
	editFlags    entryFlags
	rmYes        bool
	rmGroup      bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [regex]",
	Short: "List accounts (or groups) matching a regular expression",
	Long: `List vault entries whose name or id matches a regular expression.
Without an argument every account is listed.

Examples:
  lp ls
  lp ls Work
  lp ls --groups
  lp ls --passwords --json 'Server[0-9]'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lsCommand(cmd, firstArg(args))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name|id>",
	Short: "Show a single account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCommand(cmd, args[0])
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an account",
	Long: `Create an account. A name of the form "group/name" puts the account
in that group; --group does the same and wins over the name.

Examples:
  lp add Work/Server1 --username admin --password hunter2 --url ssh://server1
  lp add Email --group Personal --username me@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addCommand(cmd, args[0])
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <name|id>",
	Short: "Change fields of an existing account",
	Long: `Change fields of an existing account. Only the fields passed as flags
are written; everything else, including multi-line notes, is left as is.
Passing an empty value (--url "") clears that field.

Examples:
  lp edit Work/Server1 --password n3w
  lp edit 1234567890 --name Work/Server2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editCommand(cmd, args[0])
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <name|id>",
	Short: "Delete an account or group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rmCommand(cmd, args[0])
	},
}

var mkgroupCmd = &cobra.Command{
	Use:   "mkgroup <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mkgroupCommand(cmd, args[0])
	},
}

var renameGroupCmd = &cobra.Command{
	Use:   "rename-group <name|id> <new-name>",
	Short: "Rename a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renameGroupCommand(cmd, args[0], args[1])
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsGroups, "groups", false, "list groups instead of accounts")
	lsCmd.Flags().BoolVar(&lsPasswords, "passwords", false, "include passwords")
	lsCmd.Flags().BoolVar(&lsYAML, "yaml", false, "output in YAML format")

	showCmd.Flags().BoolVarP(&showPassword, "password", "p", false, "include the password")
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "output in YAML format")

	addEntryFlags(addCmd, &addFlags)
	addCmd.Flags().StringVar(&addFlags.Group, "group", "", "group to create the account in")

	addEntryFlags(editCmd, &editFlags)
	editCmd.Flags().StringVar(&editFlags.Name, "name", "", "new name (group/name moves the account)")

	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "don't ask for confirmation")
	rmCmd.Flags().BoolVar(&rmGroup, "group", false, "delete a group instead of an account")

	rootCmd.AddCommand(lsCmd, showCmd, addCmd, editCmd, rmCmd, mkgroupCmd, renameGroupCmd)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func lsCommand(cmd *cobra.Command, search string) error {
	yamlMode = yamlMode || lsYAML
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	if lsGroups {
		groups, err := a.client.Groups().FindAll(search)
		if err != nil {
			return err
		}
		data := make([]map[string]string, len(groups))
		rows := make([]ui.EntryRow, len(groups))
		for i, g := range groups {
			data[i] = g.ToMap()
			rows[i] = ui.EntryRow{ID: g.ID(), Name: g.Name, IsGroup: true}
		}
		return writeResult(cmd, data, func() {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderEntryTable(rows, false))
		})
	}

	accounts, err := a.client.Accounts().FindAll(search, lsPasswords)
	if err != nil {
		return err
	}
	data := make([]map[string]string, len(accounts))
	rows := make([]ui.EntryRow, len(accounts))
	for i, acct := range accounts {
		data[i] = acct.ToMap()
		rows[i] = entryRow(acct)
	}
	return writeResult(cmd, data, func() {
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderEntryTable(rows, lsPasswords))
	})
}

func entryRow(acct *lastpass.Account) ui.EntryRow {
	return ui.EntryRow{
		ID:       acct.ID(),
		Name:     acct.Name,
		Group:    acct.Group(),
		Username: acct.Username,
		URL:      acct.URL,
		Password: acct.Password,
	}
}

// findAccount resolves search to an account or a NOT_FOUND error.
func findAccount(a *app, search string, withPassword bool) (*lastpass.Account, error) {
	acct, err := a.client.Accounts().Find(search, withPassword)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, errors.New(errors.ErrNotFound,
			fmt.Sprintf("No account matches %q", search),
			"Run 'lp ls' to see what's in the vault")
	}
	return acct, nil
}

func showCommand(cmd *cobra.Command, search string) error {
	yamlMode = yamlMode || showYAML
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	acct, err := findAccount(a, search, showPassword)
	if err != nil {
		return err
	}

	return writeResult(cmd, acct.ToMap(), func() {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderDetails([]ui.KeyValue{
			{Key: "ID", Value: acct.ID()},
			{Key: "Name", Value: acct.Name},
			{Key: "Group", Value: acct.Group()},
			{Key: "Username", Value: acct.Username},
			{Key: "Password", Value: acct.Password},
			{Key: "URL", Value: acct.URL},
			{Key: "Notes", Value: acct.Notes},
		}))
	})
}

func (f entryFlags) params() lastpass.AccountParams {
	return lastpass.AccountParams{
		Name:     f.Name,
		Username: f.Username,
		Password: f.Password,
		URL:      f.URL,
		Notes:    f.Notes,
		Group:    f.Group,
	}
}

func addCommand(cmd *cobra.Command, name string) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	params := addFlags.params()
	params.Name = name
	acct, err := a.client.Accounts().Create(params)
	if err != nil {
		return err
	}

	return writeResult(cmd, map[string]string{"id": acct.ID(), "name": acct.Name, "group": acct.Group()}, func() {
		printSuccess(cmd.OutOrStdout(), "Created %s [id: %s]", qualified(acct.Group(), acct.Name), acct.ID())
	})
}

// changedFields turns the field flags the user actually passed into Fields,
// so an explicit empty value clears a field and anything unset is left alone.
func changedFields(cmd *cobra.Command, f entryFlags) lastpass.Fields {
	pick := func(flag, value string) *string {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		return &value
	}
	return lastpass.Fields{
		Name:     pick("name", f.Name),
		Username: pick("username", f.Username),
		Password: pick("password", f.Password),
		URL:      pick("url", f.URL),
		Notes:    pick("notes", f.Notes),
	}
}

func editCommand(cmd *cobra.Command, search string) error {
	fields := changedFields(cmd, editFlags)
	if fields.Empty() {
		return errors.New(errors.ErrInput, "Nothing to change",
			"Pass at least one of --name, --username, --password, --url or --notes")
	}

	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	acct, err := findAccount(a, search, false)
	if err != nil {
		return err
	}
	if err := acct.Patch(fields); err != nil {
		return err
	}

	return writeResult(cmd, map[string]string{"id": acct.ID(), "name": acct.Name, "group": acct.Group()}, func() {
		printSuccess(cmd.OutOrStdout(), "Updated %s [id: %s]", qualified(acct.Group(), acct.Name), acct.ID())
	})
}

// deletable is what rm removes.
type deletable interface {
	ID() string
	Delete() error
}

func rmCommand(cmd *cobra.Command, search string) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	var target deletable
	var label string
	if rmGroup {
		group, err := a.client.Groups().Find(search)
		if err != nil {
			return err
		}
		if group == nil {
			return errors.New(errors.ErrNotFound,
				fmt.Sprintf("No group matches %q", search),
				"Run 'lp ls --groups' to see the groups in the vault")
		}
		target, label = group, "group "+group.Name
	} else {
		acct, err := findAccount(a, search, false)
		if err != nil {
			return err
		}
		target, label = acct, qualified(acct.Group(), acct.Name)
	}

	if !rmYes {
		if machineMode || !isTerminal(int(os.Stdin.Fd())) {
			return errors.New(errors.ErrInput,
				fmt.Sprintf("Refusing to delete %s without confirmation", label),
				"Pass --yes to delete without asking")
		}
		ok, err := confirm(fmt.Sprintf("Delete %s [id: %s]?", label, target.ID()))
		if err != nil || !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if err := target.Delete(); err != nil {
		return err
	}
	return writeResult(cmd, map[string]string{"id": target.ID(), "deleted": label}, func() {
		printSuccess(cmd.OutOrStdout(), "Deleted %s", label)
	})
}

func mkgroupCommand(cmd *cobra.Command, name string) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	group, err := a.client.Groups().Create(name)
	if err != nil {
		return err
	}
	return writeResult(cmd, group.ToMap(), func() {
		printSuccess(cmd.OutOrStdout(), "Created group %s [id: %s]", group.Name, group.ID())
	})
}

func renameGroupCommand(cmd *cobra.Command, search, newName string) error {
	a := newApp(cmd)
	if err := a.requireSession(); err != nil {
		return err
	}

	group, err := a.client.Groups().Find(search)
	if err != nil {
		return err
	}
	if group == nil {
		return errors.New(errors.ErrNotFound,
			fmt.Sprintf("No group matches %q", search),
			"Run 'lp ls --groups' to see the groups in the vault")
	}
	if err := group.Update(newName); err != nil {
		return err
	}
	return writeResult(cmd, group.ToMap(), func() {
		printSuccess(cmd.OutOrStdout(), "Renamed group to %s", group.Name)
	})
}

func qualified(group, name string) string {
	if group == "" {
		return name
	}
	return group + "/" + name
}
