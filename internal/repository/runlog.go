package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/models"
)

// RunLogRepository appends and lists run log rows. Rows are write-once; there
// is deliberately no update or delete.
type RunLogRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRunLogRepository(db *sql.DB, log logger.Logger) *RunLogRepository {
	return &RunLogRepository{
		db:     db,
		logger: log,
	}
}

// Append inserts a run log row, assigning its ID and timestamp.
func (r *RunLogRepository) Append(ctx context.Context, entry *models.RunLog) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	if entry.Level == "" {
		entry.Level = models.LevelInfo
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_logs (id, run_id, agent, level, event_type, message, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		entry.RunID,
		entry.Agent,
		entry.Level,
		entry.EventType,
		entry.Message,
		nullableJSON(entry.Payload),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}

	return nil
}

// LogFilter holds filter and pagination params for run log listing.
type LogFilter struct {
	RunID string
	Limit int
}

// List returns recent log rows, most recent first.
func (r *RunLogRepository) List(ctx context.Context, filter LogFilter) ([]models.RunLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	query := `
		SELECT id, run_id, agent, level, event_type, message, payload, created_at
		FROM run_logs
	`
	args := []any{}
	if filter.RunID != "" {
		query += ` WHERE run_id = $1`
		args = append(args, filter.RunID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run logs: %w", err)
	}
	defer rows.Close()

	var entries []models.RunLog
	for rows.Next() {
		var entry models.RunLog
		var payload sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.Agent,
			&entry.Level,
			&entry.EventType,
			&entry.Message,
			&payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		if payload.Valid {
			entry.Payload = []byte(payload.String)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run logs: %w", err)
	}

	return entries, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
