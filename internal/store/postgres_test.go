package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := NewPostgresFromPool(mock)
	return s, mock
}

func TestPostgresStore_GetAdvisorBySlug_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM advisors WHERE slug = \$1`).
		WithArgs("missing-slug").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAdvisorBySlug(context.Background(), "missing-slug")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAdvisorBySlug(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "slug", "name", "firm_name", "designation", "city", "state", "zip_code",
		"website", "linkedin", "bio", "specialties", "verified", "created_at", "updated_at",
	}).AddRow(
		"id-1", "jane-doe-duluth", "Jane Doe", "Peachtree Accounting Group",
		model.DesignationCPA, "Duluth", "GA", "30096",
		"", "", "Bio.", []byte(`["Tax Planning"]`), false, now, now,
	)

	mock.ExpectQuery(`SELECT .+ FROM advisors WHERE slug = \$1`).
		WithArgs("jane-doe-duluth").
		WillReturnRows(rows)

	a, err := s.GetAdvisorBySlug(context.Background(), "jane-doe-duluth")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", a.Name)
	assert.Equal(t, []string{"Tax Planning"}, a.Specialties)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAdvisor_Duplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO advisors`).
		WithArgs(pgxmock.AnyArg(), "jane-doe-duluth", "Jane Doe", pgxmock.AnyArg(),
			model.DesignationCPA, "Duluth", "GA", "30096",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateAdvisor(context.Background(), &model.Advisor{
		Slug: "jane-doe-duluth", Name: "Jane Doe", Designation: model.DesignationCPA,
		City: "Duluth", State: "GA", ZipCode: "30096",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AdvisorExists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM advisors`).
		WithArgs("jane-doe-duluth", "https://example.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.AdvisorExists(context.Background(), "jane-doe-duluth", "https://example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "advisor-1", "Bob Owner", "bob@example.com",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), string(model.LeadSourceProfile), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	l := &model.Lead{
		AdvisorID:  "advisor-1",
		Name:       "Bob Owner",
		Email:      "bob@example.com",
		SourceType: model.LeadSourceProfile,
	}
	require.NoError(t, s.CreateLead(context.Background(), l))
	assert.NotEmpty(t, l.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarkLeadSynced_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE leads SET synced_at`).
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.MarkLeadSynced(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateVehicleStatus_InvalidTransition(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM vehicles WHERE id = \$1 FOR UPDATE`).
		WithArgs("veh-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(string(model.VehiclePending)))
	mock.ExpectRollback()

	err := s.UpdateVehicleStatus(context.Background(), "veh-1", model.VehicleSold)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateVehicleStatus_RevertCancelsTransaction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM vehicles WHERE id = \$1 FOR UPDATE`).
		WithArgs("veh-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(string(model.VehicleSold)))
	mock.ExpectExec(`UPDATE vehicles SET status`).
		WithArgs(string(model.VehicleActive), pgxmock.AnyArg(), "veh-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE transactions SET status`).
		WithArgs(string(model.TransactionCanceled), "veh-1", string(model.TransactionOpen)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := s.UpdateVehicleStatus(context.Background(), "veh-1", model.VehicleActive)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateOfferStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE offers SET status`).
		WithArgs(string(model.OfferAccepted), "offer-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO offer_activity`).
		WithArgs(pgxmock.AnyArg(), "offer-1", string(model.OfferAccepted), "looks good", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.UpdateOfferStatus(context.Background(), "offer-1", model.OfferAccepted, "looks good")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
