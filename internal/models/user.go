package models

import "time"

// User is a registered account. Friends and Groups only ever grow; there is
// no leave or unfriend operation.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	Friends      IDSet  `json:"friends"`
	Groups       IDSet  `json:"groups"`
	// APIKey is part of the stored record for data-model completeness; no
	// operation writes it.
	APIKey    string    `json:"api_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy whose set fields are independent of the original.
func (u *User) Clone() *User {
	c := *u
	c.Friends = u.Friends.Clone()
	c.Groups = u.Groups.Clone()
	return &c
}
