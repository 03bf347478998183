//go:generate go run go.uber.org/mock/mockgen -source=entry_repo.go -destination=../mocks/mock_entry_repo.go -package=mocks
package repo

import (
	"context"
	"errors"
	"time"

	dom "guestbook/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("entry not found")

// EntryRepo provides entry persistence. List returns entries in creation order.
type EntryRepo interface {
	Create(ctx context.Context, e dom.Entry) (dom.Entry, error)
	List(ctx context.Context) ([]dom.Entry, error)
	Update(ctx context.Context, id int64, name, message string) (dom.Entry, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// PGEntryRepo implements EntryRepo with Postgres.
type PGEntryRepo struct {
	db *pgxpool.Pool
}

// NewPGEntryRepo returns a new PGEntryRepo.
func NewPGEntryRepo(db *pgxpool.Pool) *PGEntryRepo {
	return &PGEntryRepo{db: db}
}

func (r *PGEntryRepo) Create(ctx context.Context, e dom.Entry) (dom.Entry, error) {
	query := `
		INSERT INTO entries (name, message, created_at)
		VALUES ($1, $2, COALESCE($3, NOW()))
		RETURNING id, name, message, created_at`
	var createdAt *time.Time
	if !e.CreatedAt.IsZero() {
		createdAt = &e.CreatedAt
	}
	var out dom.Entry
	err := r.db.QueryRow(ctx, query, e.Name, e.Message, createdAt).Scan(
		&out.ID, &out.Name, &out.Message, &out.CreatedAt,
	)
	return out, err
}

func (r *PGEntryRepo) List(ctx context.Context) ([]dom.Entry, error) {
	query := `
		SELECT id, name, message, created_at
		FROM entries ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Entry{}
	for rows.Next() {
		var e dom.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update changes name and message only; created_at is left as stored.
func (r *PGEntryRepo) Update(ctx context.Context, id int64, name, message string) (dom.Entry, error) {
	query := `
		UPDATE entries SET name = $2, message = $3
		WHERE id = $1
		RETURNING id, name, message, created_at`
	var e dom.Entry
	err := r.db.QueryRow(ctx, query, id, name, message).Scan(
		&e.ID, &e.Name, &e.Message, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Entry{}, ErrNotFound
	}
	return e, err
}

func (r *PGEntryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGEntryRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
