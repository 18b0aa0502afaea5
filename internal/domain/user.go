package domain

import "strings"

// Role decides which views a user may reach.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is a directory record. Email is the identity key and matches TimeEntry.Owner.
type User struct {
	Email    string
	FullName string
	Role     Role
}

// IsAdmin reports whether the user may use the cross-user views.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// FirstName returns the first word of FullName, or "User" when there is none.
func (u User) FirstName() string {
	if f := strings.Fields(u.FullName); len(f) > 0 {
		return f[0]
	}
	return "User"
}

// Initials returns two letters for calendar badges.
// A missing name falls back to the upper-cased first letter of the email.
func (u User) Initials() string {
	parts := strings.Fields(u.FullName)
	switch {
	case len(parts) > 1:
		return firstRune(parts[0]) + firstRune(parts[len(parts)-1])
	case len(parts) == 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return string(r)
	case u.Email != "":
		return strings.ToUpper(firstRune(u.Email))
	}
	return "?"
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// UserIndex maps email to user.
type UserIndex map[string]User

// IndexUsers builds a UserIndex from a directory listing.
func IndexUsers(users []User) UserIndex {
	idx := make(UserIndex, len(users))
	for _, u := range users {
		idx[u.Email] = u
	}
	return idx
}
