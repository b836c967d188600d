package auth

import "pharma-elog-backend/internal/model"

// ActingUser identifies the authenticated principal behind a request. Core
// operations take it explicitly instead of reading ambient session state.
type ActingUser struct {
	ID       string
	Username string
	Role     model.Role
}

// Acting builds an ActingUser from a loaded account.
func Acting(u *model.User) ActingUser {
	return ActingUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
