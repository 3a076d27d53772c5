package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileEmailConflict = errors.New("profile email conflict")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.IsAdmin,
	).Scan(&profile.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "profiles_email_key" {
			return ErrProfileEmailConflict
		}
		return err
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, email, password_hash, is_admin, created_at
		FROM profiles
		WHERE id = $1`
	return r.scanProfile(ctx, query, id)
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `
		SELECT id, email, password_hash, is_admin, created_at
		FROM profiles
		WHERE email = $1`
	return r.scanProfile(ctx, query, email)
}

func (r *postgresProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresProfileRepository) scanProfile(ctx context.Context, query string, args ...interface{}) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&profile.IsAdmin,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
