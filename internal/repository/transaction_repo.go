package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"empathic-credit/internal/domain"
)

// TransactionRepository define el contrato de lectura de transacciones.
type TransactionRepository interface {
	GetRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Transaction, error)
}

// PgTransactionRepository implementa TransactionRepository usando pgxpool.
type PgTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewPgTransactionRepository(pool *pgxpool.Pool) *PgTransactionRepository {
	return &PgTransactionRepository{pool: pool}
}

// GetRecent devuelve las transacciones del usuario posteriores a since,
// ordenadas de mas reciente a mas antigua.
func (r *PgTransactionRepository) GetRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Transaction, error) {
	const query = `
		SELECT id, user_id, amount, currency, occurred_at
		FROM transactions
		WHERE user_id = $1 AND occurred_at > $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return txns, nil
}
