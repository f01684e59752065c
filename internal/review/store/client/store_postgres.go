package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/sentinel"
	txcontext "casework/pkg/platform/tx"
)

// PostgresStore persists clients in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Execer {
	return txcontext.Executor(ctx, s.db)
}

const clientColumns = `client_ref, name, risk_level, aml_risk, auto_kyc_review, auto_aml_review,
	auto_sanctions_review, auto_pep_review, auto_financial_review, created_at, updated_at`

// Save upserts the client, keeping the original created_at.
func (s *PostgresStore) Save(ctx context.Context, client *models.Client) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (client_ref) DO UPDATE SET
			name = EXCLUDED.name,
			risk_level = EXCLUDED.risk_level,
			aml_risk = EXCLUDED.aml_risk,
			auto_kyc_review = EXCLUDED.auto_kyc_review,
			auto_aml_review = EXCLUDED.auto_aml_review,
			auto_sanctions_review = EXCLUDED.auto_sanctions_review,
			auto_pep_review = EXCLUDED.auto_pep_review,
			auto_financial_review = EXCLUDED.auto_financial_review,
			updated_at = EXCLUDED.updated_at
	`,
		string(client.Ref),
		client.Name,
		string(client.RiskLevel),
		string(client.AMLRisk),
		client.AutoKYCReview,
		client.AutoAMLReview,
		client.AutoSanctionsReview,
		client.AutoPEPReview,
		client.AutoFinancialReview,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByRef(ctx context.Context, ref id.ClientRef) (*models.Client, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_ref = $1`, string(ref))
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", ref, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

// ListAutoReviewEligible returns high-risk clients with at least one auto-review
// flag, ordered by reference.
func (s *PostgresStore) ListAutoReviewEligible(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE risk_level = 'high'
		  AND (auto_kyc_review OR auto_aml_review OR auto_sanctions_review
		       OR auto_pep_review OR auto_financial_review)
		ORDER BY client_ref
	`)
	if err != nil {
		return nil, fmt.Errorf("list eligible clients: %w", err)
	}
	defer rows.Close()

	out := []*models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c             models.Client
		ref           string
		risk, amlRisk string
	)
	if err := row.Scan(
		&ref,
		&c.Name,
		&risk,
		&amlRisk,
		&c.AutoKYCReview,
		&c.AutoAMLReview,
		&c.AutoSanctionsReview,
		&c.AutoPEPReview,
		&c.AutoFinancialReview,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if c.RiskLevel, err = models.ParseRiskLevel(risk); err != nil {
		return nil, fmt.Errorf("client %s: %w", ref, err)
	}
	if c.AMLRisk, err = models.ParseRiskLevel(amlRisk); err != nil {
		return nil, fmt.Errorf("client %s: %w", ref, err)
	}
	c.Ref = id.ClientRef(ref)
	return &c, nil
}
