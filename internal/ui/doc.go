// Package ui provides terminal output helpers for the lp CLI.
//
// Styling goes through Lip Gloss; the active color profile is chosen once at
// startup with SetColorMode (output.color in the config) or DisableColors
// (--no-color). Colors are ANSI codes so they follow the terminal theme:
//
//	ColorSuccess   (green)  - Passing checks, completed operations
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Warnings
//	ColorMuted     (gray)   - Suggestions, secondary text
//	ColorSecondary (blue)   - The verbose "RUN COMMAND" banner
//
// Tables are rendered with the Bubbles table component in non-interactive
// mode:
//
//	fmt.Println(ui.RenderEntryTable(rows, false))
package ui
