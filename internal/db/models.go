package db

import "time"

// Credential is a session token issued by an API server, with the user it
// was issued to.
type Credential struct {
	APIURL  string
	Token   string
	UserID  string
	Name    string
	Email   string
	SavedAt time.Time
}
