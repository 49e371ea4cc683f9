// Package cli implements the lp command-line interface.
//
// Every command is a cobra.Command whose RunE hands off to a small
// xxxCommand function. Those functions build the lpass stack with newApp
// (command builder, process runner, sync coordinator, protocol layer and
// the pkg/lastpass facade) from the config loaded in the root command's
// PersistentPreRunE, then print either a terminal rendering or, with
// --json, a JSONEnvelope.
//
// # Command Structure
//
//	lp login [email]        - Log in (password from LP_PASSWORD or a prompt)
//	lp logout / status      - Session management
//	lp ls [regex]           - List accounts or groups
//	lp show <name|id>       - Show one account
//	lp add / edit / rm      - Change accounts
//	lp mkgroup / rename-group
//	lp sync / export / import
//	lp doctor               - Diagnose the lpass install and config
//	lp config init|set|path - Manage the config file
//	lp version
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color, --json) are defined on the
// root command. Commands that must work with a broken config (doctor,
// config, version) carry the lenient-config annotation and fall back to
// the defaults.
//
// # Test Seams
//
// newRunner, readPassword, isTerminal and confirm are package variables so
// tests can swap in a fake lpass and skip the terminal.
package cli
