package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forumhelper/pkg/metrics"
)

// Grants are a user's access rows, moderation grants and global flags.
type Grants struct {
	AccessLevels []int
	Moderates    []int64
	IsAdmin      bool
	IsSuperMod   bool
}

// GrantRepository loads grants for a user.
type GrantRepository interface {
	Grants(ctx context.Context, userID int64) (*Grants, error)
}

type PGGrantRepository struct {
	db *pgxpool.Pool
}

func NewPGGrantRepository(db *pgxpool.Pool) *PGGrantRepository {
	return &PGGrantRepository{db: db}
}

// Grants returns an empty Grants for unknown users.
func (r *PGGrantRepository) Grants(ctx context.Context, userID int64) (*Grants, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "forum_access", time.Since(start)) }()

	g := &Grants{}

	err := r.db.QueryRow(ctx, `
        SELECT is_admin, is_super_mod
        FROM users
        WHERE id = $1
    `, userID).Scan(&g.IsAdmin, &g.IsSuperMod)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load user flags: %w", err)
	}

	rows, err := r.db.Query(ctx, `
        SELECT access_level
        FROM forum_access
        WHERE user_id = $1
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("load access levels: %w", err)
	}
	g.AccessLevels, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan access levels: %w", err)
	}

	rows, err = r.db.Query(ctx, `
        SELECT forum_id
        FROM forum_moderators
        WHERE user_id = $1
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("load moderation grants: %w", err)
	}
	g.Moderates, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan moderation grants: %w", err)
	}

	return g, nil
}
