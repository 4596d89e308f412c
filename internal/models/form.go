package models

// Actions accepted in the "action" field of a POST to the page.
const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)

// UserForm is the body of a POST to the users page.
// Only the fields relevant to Action are read.
type UserForm struct {
	Action string `schema:"action"`
	Name   string `schema:"name"`
	Email  string `schema:"email"`
	ID     string `schema:"id"`
}
