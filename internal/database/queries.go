package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docsummarizer/internal/domain"
)

const summaryColumns = `id, input_type, source, model_id, summary,
	document_count, chunk_count, created_at`

func (d *Database) InsertSummary(ctx context.Context, s *domain.SummaryResult) error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("summary ID is empty")
	}

	query := `insert into summaries (` + summaryColumns + `)
	values (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(ctx, query,
		s.ID,
		s.InputType,
		s.Source,
		string(s.ModelID),
		s.Text,
		s.DocumentCount,
		s.ChunkCount,
		s.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

// ListSummaries returns the newest summaries first.
func (d *Database) ListSummaries(ctx context.Context, limit int) ([]domain.SummaryResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `select ` + summaryColumns + `
	from summaries
	order by created_at desc, id
	limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"limit", limit,
				"operation", "ListSummaries")
		}
	}()

	var summaries []domain.SummaryResult
	for rows.Next() {
		s, scanErr := scanSummary(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		summaries = append(summaries, *s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return summaries, nil
}

func (d *Database) GetSummary(ctx context.Context, id string) (*domain.SummaryResult, error) {
	query := `select ` + summaryColumns + `
	from summaries
	where id = ?`

	s, err := scanSummary(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("summary %s: %w", id, ErrNotFound)
	}

	return s, err
}

// PruneSummaries deletes summaries created before the cutoff and reports how
// many were removed.
func (d *Database) PruneSummaries(ctx context.Context, before time.Time) (int64, error) {
	query := "delete from summaries where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, before.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return n, nil
}

func (d *Database) GetUserSettingsWithDefault(
	ctx context.Context,
	userID int64,
	defaultModel domain.ModelID,
) (*domain.UserSettings, error) {
	query := `select user_id, model_id
	from user_settings
	where user_id = ?`

	var us domain.UserSettings
	var modelID string

	err := d.db.QueryRowContext(ctx, query, userID).Scan(&us.UserID, &modelID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.UserSettings{
			UserID:  userID,
			ModelID: defaultModel,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	us.ModelID = domain.ModelID(strings.TrimSpace(modelID))

	return &us, nil
}

func (d *Database) UpsertUserSettings(ctx context.Context, us *domain.UserSettings) error {
	query := `insert into user_settings (user_id, model_id)
	values (?, ?)
	on conflict (user_id) do update
	set model_id = excluded.model_id`

	_, err := d.db.ExecContext(ctx, query, us.UserID, string(us.ModelID))

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*domain.SummaryResult, error) {
	var s domain.SummaryResult
	var modelID string
	var createdAt int64

	err := row.Scan(
		&s.ID,
		&s.InputType,
		&s.Source,
		&modelID,
		&s.Text,
		&s.DocumentCount,
		&s.ChunkCount,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	s.ModelID = domain.ModelID(modelID)
	s.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &s, nil
}
