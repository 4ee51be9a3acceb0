package models

// User is the identity snapshot supplied by the session provider.
// Messages copy these fields at send time so later profile changes
// never rewrite history.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
