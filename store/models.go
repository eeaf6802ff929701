package store

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus = string

const (
	// StatusOpen is a freshly created ticket
	StatusOpen TicketStatus = "open"
	// StatusInProgress is a ticket being worked on
	StatusInProgress TicketStatus = "in_progress"
	// StatusDone is a resolved ticket
	StatusDone TicketStatus = "done"
	// StatusCancelled is an abandoned ticket
	StatusCancelled TicketStatus = "cancelled"
)

// ParseTicketStatus validates a raw status value.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch raw {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
		return raw, true
	}
	return "", false
}

// User is the credential store record. The password hash is never
// serialized outward.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Enabled       bool       `bun:"enabled,notnull" json:"enabled"`
	Locked        bool       `bun:"locked,notnull" json:"locked"`
	Tickets       []*Ticket  `bun:"rel:has-many,join:id=user_id" json:"tickets,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Ticket is a unit of work, optionally assigned to a user.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:tck"`
	ID            int64        `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Title         string       `bun:"title,notnull,unique" json:"title,omitempty"`
	Description   string       `bun:"description" json:"description,omitempty"`
	Status        TicketStatus `bun:"status,notnull" json:"status,omitempty"`
	UserID        *int64       `bun:"user_id,nullzero" json:"user_id,omitempty"`
	User          *User        `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
