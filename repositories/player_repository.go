package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player with this name and team already exists")
	// ErrPlayerHasForeignSessions - у игрока есть сессии другого владельца, удалять его нельзя.
	ErrPlayerHasForeignSessions = errors.New("player has sessions owned by another user")
)

// PlayerRepository - все чтения и изменения ограничены областью видимости (models.Scope).
type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.Player, error)
	FindByNameTeam(ctx context.Context, exec SQLExecutor, scope models.Scope, name, team string) (*models.Player, error)
	List(ctx context.Context, scope models.Scope) ([]models.Player, error)
	UpdateNotes(ctx context.Context, exec SQLExecutor, id int, notes string) error
	Reassign(ctx context.Context, exec SQLExecutor, id int, userEmail string) error
	Delete(ctx context.Context, exec SQLExecutor, scope models.Scope, id int) error
	DeleteIfEmpty(ctx context.Context, exec SQLExecutor, id int) (bool, error)
	ListWithoutSessions(ctx context.Context, scope models.Scope) ([]models.Player, error)
	DeleteWithoutSessions(ctx context.Context, exec SQLExecutor, scope models.Scope) ([]int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `p.id, p.name, p.team, p.notes, p.user_email, p.created_implicitly, p.created_at`

const playerHasNoSessions = `NOT EXISTS (SELECT 1 FROM sessions s WHERE s.player_id = p.id)`

func playerByIDQuery(scope models.Scope, id int) (string, []interface{}) {
	w := (&whereBuilder{}).eq("p.id", id).scope(scope, "p.user_email")
	return `SELECT ` + playerColumns + ` FROM players p` + w.sql(), w.args
}

// deletePlayerQuery: в ограниченной области игрок удаляется, только если все его сессии
// принадлежат тому же владельцу (каскад не должен задеть чужие строки).
func deletePlayerQuery(scope models.Scope, id int) (string, []interface{}) {
	w := (&whereBuilder{}).eq("p.id", id).scope(scope, "p.user_email")
	if !scope.Unrestricted() && !scope.DeniesAll() {
		w.raw(fmt.Sprintf("NOT EXISTS (SELECT 1 FROM sessions s WHERE s.player_id = p.id AND s.user_email <> $%d)", len(w.args)))
	}
	return `DELETE FROM players p` + w.sql(), w.args
}

func deleteEmptyPlayerQuery(id int) (string, []interface{}) {
	w := (&whereBuilder{}).eq("p.id", id).raw(playerHasNoSessions)
	return `DELETE FROM players p` + w.sql(), w.args
}

func orphanPlayersWhere(scope models.Scope) *whereBuilder {
	return (&whereBuilder{}).raw(playerHasNoSessions).scope(scope, "p.user_email")
}

func deleteOrphanPlayersQuery(scope models.Scope) (string, []interface{}) {
	w := orphanPlayersWhere(scope)
	return `DELETE FROM players p` + w.sql() + ` RETURNING p.id`, w.args
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (name, team, notes, user_email, created_implicitly)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executorOr(exec, r.db).QueryRowContext(ctx, query,
		player.Name,
		player.Team,
		player.Notes,
		player.UserEmail,
		player.CreatedImplicitly,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_name_team_user_email_key" {
			return ErrPlayerConflict
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Player, error) {
	query, args := playerByIDQuery(scope, id)

	var player models.Player
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&player.ID,
		&player.Name,
		&player.Team,
		&player.Notes,
		&player.UserEmail,
		&player.CreatedImplicitly,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// FindByNameTeam ищет игрока по (name, team). Для администратора (неограниченная область)
// email владельца не учитывается, берется первая запись по id.
func (r *postgresPlayerRepository) FindByNameTeam(ctx context.Context, exec SQLExecutor, scope models.Scope, name, team string) (*models.Player, error) {
	w := (&whereBuilder{}).eq("p.name", name).eq("p.team", team).scope(scope, "p.user_email")
	query := `SELECT ` + playerColumns + ` FROM players p` + w.sql() + ` ORDER BY p.id ASC LIMIT 1`

	var player models.Player
	err := executorOr(exec, r.db).QueryRowContext(ctx, query, w.args...).Scan(
		&player.ID,
		&player.Name,
		&player.Team,
		&player.Notes,
		&player.UserEmail,
		&player.CreatedImplicitly,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, scope models.Scope) ([]models.Player, error) {
	w := (&whereBuilder{}).scope(scope, "p.user_email")
	query := `
		SELECT ` + playerColumns + `,
			(SELECT COUNT(*) FROM sessions s WHERE s.player_id = p.id)
		FROM players p` + w.sql() + `
		ORDER BY p.name ASC, p.id ASC`

	return r.queryPlayers(ctx, query, true, w.args...)
}

func (r *postgresPlayerRepository) UpdateNotes(ctx context.Context, exec SQLExecutor, id int, notes string) error {
	result, err := executorOr(exec, r.db).ExecContext(ctx, `UPDATE players SET notes = $1 WHERE id = $2`, notes, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Reassign(ctx context.Context, exec SQLExecutor, id int, userEmail string) error {
	result, err := executorOr(exec, r.db).ExecContext(ctx, `UPDATE players SET user_email = $1 WHERE id = $2`, userEmail, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPlayerConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, scope models.Scope, id int) error {
	executor := executorOr(exec, r.db)
	query, args := deletePlayerQuery(scope, id)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Ничего не удалено: либо игрока нет в области, либо его держат чужие сессии.
	email, restricted := scope.OwnerEmail()
	if !restricted || email == "" {
		return ErrPlayerNotFound
	}
	var owned bool
	err = executor.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM players WHERE id = $1 AND user_email = $2)`, id, email,
	).Scan(&owned)
	if err != nil {
		return err
	}
	if owned {
		return ErrPlayerHasForeignSessions
	}
	return ErrPlayerNotFound
}

// DeleteIfEmpty удаляет игрока одним запросом, только если у него нет сессий.
// false означает, что игрок не удален (сессии есть или игрока уже нет).
func (r *postgresPlayerRepository) DeleteIfEmpty(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	query, args := deleteEmptyPlayerQuery(id)
	result, err := executorOr(exec, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresPlayerRepository) ListWithoutSessions(ctx context.Context, scope models.Scope) ([]models.Player, error) {
	w := orphanPlayersWhere(scope)
	query := `SELECT ` + playerColumns + ` FROM players p` + w.sql() + ` ORDER BY p.id ASC`

	return r.queryPlayers(ctx, query, false, w.args...)
}

// DeleteWithoutSessions удаляет всех игроков без сессий одним запросом и возвращает их id.
func (r *postgresPlayerRepository) DeleteWithoutSessions(ctx context.Context, exec SQLExecutor, scope models.Scope) ([]int, error) {
	query, args := deleteOrphanPlayersQuery(scope)

	rows, err := executorOr(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, withCount bool, args ...interface{}) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		dest := []interface{}{
			&player.ID,
			&player.Name,
			&player.Team,
			&player.Notes,
			&player.UserEmail,
			&player.CreatedImplicitly,
			&player.CreatedAt,
		}
		var count int
		if withCount {
			dest = append(dest, &count)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if withCount {
			player.SessionCount = &count
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
