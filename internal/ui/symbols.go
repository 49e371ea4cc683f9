package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Operation succeeded
	SymbolFail     = "✗" // Operation failed
	SymbolPending  = "○" // Check not run
	SymbolComplete = "●" // Check done (colored by status)
	SymbolGroup    = "▸" // Group row in listings
)
