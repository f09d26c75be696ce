package quote

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blower-selector/internal/common/database"
	commonerrors "blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(&database.PostgresClient{DB: db}, logger.NewTestLogger(t))
	return repo, mock
}

func TestRepositorySave(t *testing.T) {
	repo, mock := newMockRepository(t)

	assembler := NewAssembler(logger.NewTestLogger(t))
	q := assembler.Assemble(sampleAnswers(), sampleRequirement(), sampleMatches())

	mock.ExpectExec("INSERT INTO quotes").
		WithArgs(q.ID, q.Timestamp, "ops@plant.co.za", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), q))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySaveFailureIsDomainError(t *testing.T) {
	repo, mock := newMockRepository(t)

	assembler := NewAssembler(logger.NewTestLogger(t))
	q := assembler.Assemble(sampleAnswers(), sampleRequirement(), nil)

	mock.ExpectExec("INSERT INTO quotes").
		WillReturnError(assert.AnError)

	err := repo.Save(context.Background(), q)
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeQuotePersistFailed, commonerrors.CodeOf(err))
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newMockRepository(t)

	assembler := NewAssembler(logger.NewTestLogger(t))
	stored := assembler.Assemble(sampleAnswers(), sampleRequirement(), sampleMatches())
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM quotes").
		WithArgs(stored.ID).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := repo.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, stored.Requirement.AirflowM3Min, got.Requirement.AirflowM3Min)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, stored.Matches[0].Product.Model, got.Matches[0].Product.Model)
}

func TestRepositoryGetMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT payload FROM quotes").
		WithArgs("Q20260101-DEADBEEF").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := repo.Get(context.Background(), "Q20260101-DEADBEEF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
