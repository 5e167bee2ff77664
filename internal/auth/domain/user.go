package domain

import "time"

// UserStatus is the account lifecycle state. INVITED accounts exist only
// as a row created by invitation acceptance bootstrap; DISABLED is
// terminal — there is no re-enable path.
type UserStatus string

const (
	UserStatusInvited  UserStatus = "INVITED"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string // argon2id PHC string; empty while INVITED
	Status       UserStatus
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user currently holds the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleIDs returns the ids of the user's roles, in role order.
func (u User) RoleIDs() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.ID)
	}
	return out
}

// RoleNames returns the names of the user's roles, in role order.
func (u User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}
