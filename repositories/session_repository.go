package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionPlayerInvalid = errors.New("session player does not exist")
)

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.Session) error
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.Session, error)
	List(ctx context.Context, scope models.Scope, playerID *int) ([]models.Session, error)
	Delete(ctx context.Context, exec SQLExecutor, scope models.Scope, id int) error
	CountByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (int, error)
	ReassignByPlayer(ctx context.Context, exec SQLExecutor, playerID int, userEmail string) (int64, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

const sessionColumns = `id, player_id, date, session_name, video_source, kinovea_csv, notes, user_email, created_at`

func sessionByIDQuery(scope models.Scope, id int) (string, []interface{}) {
	w := (&whereBuilder{}).eq("id", id).scope(scope, "user_email")
	return `SELECT ` + sessionColumns + ` FROM sessions` + w.sql(), w.args
}

func listSessionsQuery(scope models.Scope, playerID *int) (string, []interface{}) {
	w := &whereBuilder{}
	if playerID != nil {
		w.eq("player_id", *playerID)
	}
	w.scope(scope, "user_email")
	return `SELECT ` + sessionColumns + ` FROM sessions` + w.sql() + ` ORDER BY date DESC, id DESC`, w.args
}

func deleteSessionQuery(scope models.Scope, id int) (string, []interface{}) {
	w := (&whereBuilder{}).eq("id", id).scope(scope, "user_email")
	return `DELETE FROM sessions` + w.sql(), w.args
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, session *models.Session) error {
	query := `
		INSERT INTO sessions (player_id, date, session_name, video_source, kinovea_csv, notes, user_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	var kinoveaCSV sql.NullString
	if session.KinoveaCSV != nil {
		kinoveaCSV = sql.NullString{String: *session.KinoveaCSV, Valid: true}
	}

	err := executorOr(exec, r.db).QueryRowContext(ctx, query,
		session.PlayerID,
		session.Date,
		session.SessionName,
		session.VideoSource,
		kinoveaCSV,
		session.Notes,
		session.UserEmail,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "sessions_player_id_fkey" {
			return ErrSessionPlayerInvalid
		}
		return err
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Session, error) {
	query, args := sessionByIDQuery(scope, id)

	session, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, scope models.Scope, playerID *int) ([]models.Session, error) {
	query, args := listSessionsQuery(scope, playerID)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, exec SQLExecutor, scope models.Scope, id int) error {
	query, args := deleteSessionQuery(scope, id)
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

// CountByPlayer считает все сессии игрока без учета владельца (путь администратора).
func (r *postgresSessionRepository) CountByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (int, error) {
	var count int
	err := executorOr(exec, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE player_id = $1`, playerID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ReassignByPlayer переносит все сессии игрока на нового владельца (вместе со сменой владельца игрока).
func (r *postgresSessionRepository) ReassignByPlayer(ctx context.Context, exec SQLExecutor, playerID int, userEmail string) (int64, error) {
	result, err := executorOr(exec, r.db).ExecContext(ctx,
		`UPDATE sessions SET user_email = $1 WHERE player_id = $2 AND user_email <> $1`, userEmail, playerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var kinoveaCSV sql.NullString
	err := row.Scan(
		&session.ID,
		&session.PlayerID,
		&session.Date,
		&session.SessionName,
		&session.VideoSource,
		&kinoveaCSV,
		&session.Notes,
		&session.UserEmail,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if kinoveaCSV.Valid {
		session.KinoveaCSV = &kinoveaCSV.String
	}
	return &session, nil
}
