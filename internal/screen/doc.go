// Package screen holds the view-state logic shared by the dashboard and
// project detail screens: the session gate, the resource loader, the
// view-mode state machine, the mutation coordinator and the confirmation
// gate. Nothing here renders; internal/tui drives these types from Bubble Tea.
//
// Every screen's data is derived from its latest completed load. Mutations
// never patch that data in place: a successful mutation returns the screen
// to viewing and triggers a full reload.
package screen
