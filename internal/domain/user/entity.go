package user

import (
	"database/sql"
	"time"
)

// User is the slice of the user record this service touches. Identity and
// profile data are owned by the auth service; the credits column is a cache
// of the ledger, adjusted only inside ledger transactions.
type User struct {
	ID        string         `db:"id" json:"id"`
	Email     sql.NullString `db:"email" json:"email,omitempty"`
	FullName  sql.NullString `db:"full_name" json:"fullName,omitempty"`
	Credits   int            `db:"credits" json:"credits"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}
