package quote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"blower-selector/internal/common/database"
	"blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
)

// Repository persists issued quotes to PostgreSQL.
type Repository struct {
	db     *database.PostgresClient
	logger logger.Logger
}

// NewRepository creates a quote repository.
func NewRepository(db *database.PostgresClient, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

const insertQuoteSQL = `
	INSERT INTO quotes (id, created_at, email, payload)
	VALUES ($1, $2, $3, $4)`

const selectQuoteSQL = `
	SELECT payload FROM quotes WHERE id = $1`

// Save stores a quote. The full structure is kept as JSON alongside the
// columns used for lookups.
func (r *Repository) Save(ctx context.Context, q *Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote %s: %w", q.ID, err)
	}

	email := ""
	if q.Answers.Email != nil {
		email = *q.Answers.Email
	}

	if _, err := r.db.Exec(ctx, insertQuoteSQL, q.ID, q.Timestamp, email, payload); err != nil {
		r.logger.WithError(err).Error("failed to persist quote", zap.String("quote_id", q.ID))
		return errors.NewDomainError(errors.ErrCodeQuotePersistFailed,
			fmt.Sprintf("could not store quote %s", q.ID), err.Error())
	}

	r.logger.Debug("quote persisted", zap.String("quote_id", q.ID))
	return nil
}

// Get loads a quote by identifier. Returns sql.ErrNoRows wrapped in a domain
// error when the quote does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Quote, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, selectQuoteSQL, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewDomainError(errors.ErrCodeQuotePersistFailed,
			fmt.Sprintf("quote %s not found", id), "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quote %s: %w", id, err)
	}

	var q Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, fmt.Errorf("failed to decode quote %s: %w", id, err)
	}
	return &q, nil
}
