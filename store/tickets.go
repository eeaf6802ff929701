package store

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrTicketNotFound is returned when no ticket matches the lookup.
var ErrTicketNotFound = errors.New("Ticket not found.", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("TICKET_NOT_FOUND")

// ErrDuplicateTicketTitle is returned when a title is already in use.
var ErrDuplicateTicketTitle = errors.New("Duplicate ticket title", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("DUPLICATE_TICKET_TITLE")

// ErrAssigneeNotFound is returned when a ticket is assigned to a user
// that does not exist.
var ErrAssigneeNotFound = errors.New("User to assign ticket not found.", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("ASSIGNEE_NOT_FOUND")

// ErrInvalidTicketStatus is returned when a write carries a status
// outside the lifecycle enum.
var ErrInvalidTicketStatus = errors.New("Invalid ticket status", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("INVALID_TICKET_STATUS")

// Tickets is the ticket store.
type Tickets struct {
	db *bun.DB
}

// NewTickets returns a Tickets repository bound to db.
func NewTickets(db *bun.DB) *Tickets {
	return &Tickets{db: db}
}

// Find retrieves a ticket by id.
func (r *Tickets) Find(ctx context.Context, id int64) (*Ticket, error) {
	return r.findTx(ctx, r.db, id)
}

func (r *Tickets) findTx(ctx context.Context, tx bun.IDB, id int64) (*Ticket, error) {
	ticket := &Ticket{}
	err := tx.NewSelect().
		Model(ticket).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrTicketNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve ticket")
	}

	return ticket, nil
}

// FindByTitle retrieves a ticket by its unique title.
func (r *Tickets) FindByTitle(ctx context.Context, title string) (*Ticket, error) {
	ticket := &Ticket{}
	err := r.db.NewSelect().
		Model(ticket).
		Where("?TableAlias.title = ?", title).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrTicketNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve ticket")
	}

	return ticket, nil
}

// List returns all tickets.
func (r *Tickets) List(ctx context.Context) ([]*Ticket, error) {
	var tickets []*Ticket
	if err := r.db.NewSelect().Model(&tickets).Order("id ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list tickets")
	}
	return tickets, nil
}

// Create inserts a new ticket.
func (r *Tickets) Create(ctx context.Context, ticket *Ticket) (*Ticket, error) {
	if ticket.Status == "" {
		ticket.Status = StatusOpen
	}
	if _, ok := ParseTicketStatus(ticket.Status); !ok {
		return nil, ErrInvalidTicketStatus
	}

	if _, err := r.db.NewInsert().Model(ticket).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTicketTitle
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create ticket")
	}

	return ticket, nil
}

// Update persists title, description, and status of an existing ticket.
func (r *Tickets) Update(ctx context.Context, ticket *Ticket) (*Ticket, error) {
	if _, ok := ParseTicketStatus(ticket.Status); !ok {
		return nil, ErrInvalidTicketStatus
	}

	res, err := r.db.NewUpdate().
		Model(ticket).
		Column("title", "description", "status").
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTicketTitle
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update ticket")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTicketNotFound
	}

	return ticket, nil
}

// Delete removes a ticket.
func (r *Tickets) Delete(ctx context.Context, id int64) error {
	ticket, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.db.NewDelete().Model(ticket).WherePK().Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete ticket")
	}

	return nil
}

// Assign sets the ticket's assignee. Ticket and user existence are
// checked inside one transaction so a missing user never leaves a
// half-updated ticket behind.
func (r *Tickets) Assign(ctx context.Context, ticketID, userID int64) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		ticket, err := r.findTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}

		exists, err := tx.NewSelect().
			Model((*User)(nil)).
			Where("?TableAlias.id = ?", userID).
			Exists(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check assignee")
		}
		if !exists {
			return ErrAssigneeNotFound
		}

		ticket.UserID = &userID
		if _, err := tx.NewUpdate().
			Model(ticket).
			Column("user_id").
			Set("updated_at = current_timestamp").
			WherePK().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to assign ticket")
		}

		return nil
	})
}
