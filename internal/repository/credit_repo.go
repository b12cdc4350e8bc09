package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"empathic-credit/internal/domain"
)

// CreditRepository define el contrato de persistencia del pipeline de
// credito: assessments, ofertas y cuentas.
type CreditRepository interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	GetAccountForUser(ctx context.Context, q Querier, userID string) (*domain.CreditAccount, error)
	GetActiveOfferForUser(ctx context.Context, q Querier, userID string) (*domain.CreditOffer, error)
	GetValidRiskAssessment(ctx context.Context, q Querier, userID string) (*domain.RiskAssessment, error)
	CreateRiskAssessment(ctx context.Context, q Querier, assessment domain.RiskAssessment, features domain.FeatureVector) error
	CreateOffer(ctx context.Context, q Querier, offer domain.CreditOffer) error
	GetOfferForAcceptance(ctx context.Context, tx pgx.Tx, offerID, userID string) (*domain.CreditOffer, error)
	UpdateOfferStatus(ctx context.Context, tx pgx.Tx, offerID string, status domain.OfferStatus) error
	CreateAccount(ctx context.Context, tx pgx.Tx, account domain.CreditAccount) error
}

// PgCreditRepository implementa CreditRepository usando pgxpool.
type PgCreditRepository struct {
	pool *pgxpool.Pool
}

func NewPgCreditRepository(pool *pgxpool.Pool) *PgCreditRepository {
	return &PgCreditRepository{pool: pool}
}

// Pool expone el pool para lecturas fuera de transaccion.
func (r *PgCreditRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// InTx ejecuta fn dentro de una transaccion; rollback ante cualquier error.
func (r *PgCreditRepository) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *PgCreditRepository) GetAccountForUser(ctx context.Context, q Querier, userID string) (*domain.CreditAccount, error) {
	const query = `
		SELECT id, user_id, active_limit, apr, credit_type, current_balance, available_credit, created_at, updated_at
		FROM credit_accounts
		WHERE user_id = $1
	`
	if q == nil {
		q = r.pool
	}

	var a domain.CreditAccount
	err := q.QueryRow(ctx, query, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.ActiveLimit,
		&a.APR,
		&a.CreditType,
		&a.CurrentBalance,
		&a.AvailableCredit,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query credit account: %w", err)
	}
	return &a, nil
}

func (r *PgCreditRepository) GetActiveOfferForUser(ctx context.Context, q Querier, userID string) (*domain.CreditOffer, error) {
	const query = `
		SELECT id, user_id, risk_assessment_id, status, credit_type, credit_limit, apr, created_at, expires_at
		FROM credit_offers
		WHERE user_id = $1 AND status = $2 AND expires_at > now()
		LIMIT 1
	`
	if q == nil {
		q = r.pool
	}

	offer, err := scanOffer(q.QueryRow(ctx, query, userID, domain.OfferStatusOffered))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active credit offer: %w", err)
	}
	return offer, nil
}

func (r *PgCreditRepository) GetValidRiskAssessment(ctx context.Context, q Querier, userID string) (*domain.RiskAssessment, error) {
	const query = `
		SELECT id, user_id, risk_score, created_at, expires_at
		FROM risk_assessments
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`
	if q == nil {
		q = r.pool
	}

	var a domain.RiskAssessment
	err := q.QueryRow(ctx, query, userID).Scan(&a.ID, &a.UserID, &a.RiskScore, &a.CreatedAt, &a.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query valid risk assessment: %w", err)
	}
	return &a, nil
}

// CreateRiskAssessment persiste un assessment junto al snapshot del feature
// vector usado para puntuarlo, para reentrenamiento del modelo.
func (r *PgCreditRepository) CreateRiskAssessment(ctx context.Context, q Querier, assessment domain.RiskAssessment, features domain.FeatureVector) error {
	const query = `
		INSERT INTO risk_assessments (id, user_id, risk_score, features, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if q == nil {
		q = r.pool
	}

	_, err := q.Exec(ctx, query,
		assessment.ID,
		assessment.UserID,
		assessment.RiskScore,
		pgvector.NewVector(features.Values()),
		assessment.CreatedAt,
		assessment.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert risk assessment: %w", err)
	}
	return nil
}

func (r *PgCreditRepository) CreateOffer(ctx context.Context, q Querier, offer domain.CreditOffer) error {
	const query = `
		INSERT INTO credit_offers (id, user_id, risk_assessment_id, status, credit_type, credit_limit, apr, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if q == nil {
		q = r.pool
	}

	var creditType *string
	if offer.CreditType != nil {
		s := string(*offer.CreditType)
		creditType = &s
	}

	_, err := q.Exec(ctx, query,
		offer.ID,
		offer.UserID,
		offer.RiskAssessmentID,
		offer.Status,
		creditType,
		offer.CreditLimit,
		offer.APR,
		offer.CreatedAt,
		offer.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit offer: %w", err)
	}
	return nil
}

// GetOfferForAcceptance carga la oferta del job de aceptacion con lock de
// fila, validando propiedad y estado en la misma consulta.
func (r *PgCreditRepository) GetOfferForAcceptance(ctx context.Context, tx pgx.Tx, offerID, userID string) (*domain.CreditOffer, error) {
	const query = `
		SELECT id, user_id, risk_assessment_id, status, credit_type, credit_limit, apr, created_at, expires_at
		FROM credit_offers
		WHERE id = $1 AND user_id = $2 AND status = $3
		FOR UPDATE
	`

	offer, err := scanOffer(tx.QueryRow(ctx, query, offerID, userID, domain.OfferStatusOffered))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query offer for acceptance: %w", err)
	}
	return offer, nil
}

func (r *PgCreditRepository) UpdateOfferStatus(ctx context.Context, tx pgx.Tx, offerID string, status domain.OfferStatus) error {
	const query = `
		UPDATE credit_offers SET status = $2 WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, offerID, status)
	if err != nil {
		return fmt.Errorf("update credit offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update credit offer status: offer %s not found", offerID)
	}
	return nil
}

func (r *PgCreditRepository) CreateAccount(ctx context.Context, tx pgx.Tx, account domain.CreditAccount) error {
	const query = `
		INSERT INTO credit_accounts (id, user_id, active_limit, apr, credit_type, current_balance, available_credit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.ActiveLimit,
		account.APR,
		account.CreditType,
		account.CurrentBalance,
		account.AvailableCredit,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit account: %w", err)
	}
	return nil
}

func scanOffer(row pgx.Row) (*domain.CreditOffer, error) {
	var (
		o          domain.CreditOffer
		creditType *string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.RiskAssessmentID,
		&o.Status,
		&creditType,
		&o.CreditLimit,
		&o.APR,
		&o.CreatedAt,
		&o.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	if creditType != nil {
		ct := domain.CreditType(*creditType)
		o.CreditType = &ct
	}
	return &o, nil
}
