package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/pitch-tracker/models"
)

// SQLExecutor позволяет репозиториям работать как с *sql.DB, так и внутри *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func executorOr(exec SQLExecutor, db *sql.DB) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// whereBuilder собирает условие WHERE с позиционными параметрами $N.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) eq(column string, arg interface{}) *whereBuilder {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
	return w
}

// scope conjoins the owner predicate. A scope without an owner matches nothing.
func (w *whereBuilder) scope(scope models.Scope, column string) *whereBuilder {
	if scope.DeniesAll() {
		w.conds = append(w.conds, "FALSE")
		return w
	}
	if email, restricted := scope.OwnerEmail(); restricted {
		w.eq(column, email)
	}
	return w
}

func (w *whereBuilder) raw(cond string) *whereBuilder {
	w.conds = append(w.conds, cond)
	return w
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// TxManager runs fn inside one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type postgresTxManager struct {
	db *sql.DB
}

func NewPostgresTxManager(db *sql.DB) TxManager {
	return &postgresTxManager{db: db}
}

func (m *postgresTxManager) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}
