package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/repository"
	"github.com/jonesrussell/adscout/internal/testhelpers"
)

func TestRunLogRepository_Append(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		entry     models.RunLog
		wantErr   bool
	}{
		{
			name: "plain message",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO run_logs").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			entry: models.RunLog{
				RunID:     runID,
				Agent:     models.AgentSystem,
				Level:     models.LevelInfo,
				EventType: models.EventSummary,
				Message:   "Run started",
			},
		},
		{
			name: "structured payload",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO run_logs").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			entry: models.RunLog{
				RunID:     runID,
				Agent:     models.AgentPlanner,
				EventType: models.EventPlan,
				Message:   "Plan ready",
				Payload:   []byte(`{"niche":"coffee"}`),
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO run_logs").
					WillReturnError(sql.ErrConnDone)
			},
			entry: models.RunLog{
				RunID:   runID,
				Agent:   models.AgentSystem,
				Message: "Run started",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)

			repo := repository.NewRunLogRepository(db, testhelpers.NewTestLogger())

			entry := tt.entry
			err = repo.Append(context.Background(), &entry)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, entry.ID)
			assert.False(t, entry.CreatedAt.IsZero())
			// Level defaults to info when unset.
			assert.NotEmpty(t, entry.Level)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunLogRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM run_logs").
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "run_id", "agent", "level", "event_type", "message", "payload", "created_at",
		}).
			AddRow("log-2", runID, models.AgentSystem, models.LevelInfo, models.EventSummary, "Run completed. Added 1 items.", nil, now).
			AddRow("log-1", runID, models.AgentPlanner, models.LevelInfo, models.EventPlan, "Plan ready", `{"niche":"coffee"}`, now.Add(-time.Minute)))

	repo := repository.NewRunLogRepository(db, testhelpers.NewTestLogger())

	entries, err := repo.List(context.Background(), repository.LogFilter{RunID: runID})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Run completed. Added 1 items.", entries[0].Message)
	assert.Empty(t, entries[0].Payload)
	assert.JSONEq(t, `{"niche":"coffee"}`, string(entries[1].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}
