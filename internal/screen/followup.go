package screen

// Followup is what the caller must do after a mutation completes.
type Followup int

const (
	// Stay keeps the screen as is. The form, if any, is still open.
	Stay Followup = iota
	// Reload refetches the screen's data.
	Reload
	// LeaveToDashboard navigates away; the screen's subject no longer exists.
	LeaveToDashboard
)
