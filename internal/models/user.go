package models

import "time"

// User is an account that can authenticate against the API
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsSuperuser  bool      `db:"is_superuser"`
	DateJoined   time.Time `db:"date_joined"`
	Groups       []string  `db:"-"`
}

// HasGroup reports whether the user belongs to the named canonical group
func (u *User) HasGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}
