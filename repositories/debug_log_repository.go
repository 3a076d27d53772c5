package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/pitch-tracker/models"
)

// DebugLogRepository - журнал просмотров, только вставка и чтение.
type DebugLogRepository interface {
	Create(ctx context.Context, entry *models.DebugLog) error
	List(ctx context.Context) ([]models.DebugLog, error)
}

type postgresDebugLogRepository struct {
	db *sql.DB
}

func NewPostgresDebugLogRepository(db *sql.DB) DebugLogRepository {
	return &postgresDebugLogRepository{db: db}
}

func (r *postgresDebugLogRepository) Create(ctx context.Context, entry *models.DebugLog) error {
	query := `
		INSERT INTO debug_logs (player_id, video_id, view_email_id, is_admin, is_user)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		entry.PlayerID,
		entry.VideoID,
		entry.ViewEmailID,
		entry.IsAdmin,
		entry.IsUser,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *postgresDebugLogRepository) List(ctx context.Context) ([]models.DebugLog, error) {
	query := `
		SELECT id, player_id, video_id, view_email_id, is_admin, is_user, created_at
		FROM debug_logs
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.DebugLog, 0)
	for rows.Next() {
		var entry models.DebugLog
		if err := rows.Scan(
			&entry.ID,
			&entry.PlayerID,
			&entry.VideoID,
			&entry.ViewEmailID,
			&entry.IsAdmin,
			&entry.IsUser,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
