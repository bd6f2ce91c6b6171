// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a franchisee account: the operator of one franchise location who
// posts jobs and reviews the applications sent to them.
//
// Password holds the bcrypt hash, never the plaintext. The storage layer
// treats it as opaque; auth.PasswordService produces and checks it.
// The json:"-" tag keeps the hash out of every API response.
type User struct {
	ID            int64     `json:"id"            db:"id"`
	Username      string    `json:"username"      db:"username"`
	Password      string    `json:"-"             db:"password"`
	FranchiseName string    `json:"franchiseName" db:"franchise_name"`
	FranchiseeID  string    `json:"franchiseeId"  db:"franchisee_id"`
	Location      string    `json:"location"      db:"location"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
}
