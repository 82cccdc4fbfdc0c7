package repositories

import (
	"context"
	"testing"
	"time"

	"slotshare/internal/common"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ReservationRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ReservationRepository
	ctx     context.Context
	slotID  uuid.UUID
	ownerID uuid.UUID
	params  BookParams
}

func (suite *ReservationRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewReservationRepo(mock)
	suite.ctx = context.Background()
	suite.slotID = uuid.New()
	suite.ownerID = uuid.New()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.params = BookParams{
		TenantCode: "maple-court",
		SlotID:     suite.slotID,
		RenterID:   uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
	}
}

func (suite *ReservationRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestReservationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationRepoTestSuite))
}

func (suite *ReservationRepoTestSuite) expectSlotLock(price *float64, state string, autoConfirm bool) {
	suite.mock.ExpectQuery(`SELECT owner_id, price_per_hour, lifecycle_state, auto_confirm`).
		WithArgs(suite.params.TenantCode, suite.params.SlotID).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "price_per_hour", "lifecycle_state", "auto_confirm"}).
			AddRow(suite.ownerID, price, state, autoConfirm))
}

func (suite *ReservationRepoTestSuite) TestBook_Success() {
	price := 50.0
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectSlotLock(&price, "active", false)
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(suite.params.SlotID, suite.params.StartTime, suite.params.EndTime).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs(pgxmock.AnyArg(), suite.params.TenantCode, suite.params.SlotID, suite.params.RenterID, suite.ownerID,
			suite.params.StartTime, suite.params.EndTime, 100.0, "pending").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectCommit()

	reservation, err := suite.repo.Book(suite.ctx, suite.params)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, reservation.TotalPrice, "2 hours at 50/hour")
	assert.Equal(suite.T(), "pending", reservation.Status)
	assert.Equal(suite.T(), suite.ownerID, reservation.SlotOwnerID)
}

func (suite *ReservationRepoTestSuite) TestBook_AutoConfirmSkipsPending() {
	price := 12.5
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectSlotLock(&price, "active", true)
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(suite.params.SlotID, suite.params.StartTime, suite.params.EndTime).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs(pgxmock.AnyArg(), suite.params.TenantCode, suite.params.SlotID, suite.params.RenterID, suite.ownerID,
			suite.params.StartTime, suite.params.EndTime, 25.0, "confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectCommit()

	reservation, err := suite.repo.Book(suite.ctx, suite.params)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "confirmed", reservation.Status)
}

func (suite *ReservationRepoTestSuite) TestBook_OverlapConflict() {
	price := 50.0

	suite.mock.ExpectBegin()
	suite.expectSlotLock(&price, "active", false)
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(suite.params.SlotID, suite.params.StartTime, suite.params.EndTime).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectRollback()

	_, err := suite.repo.Book(suite.ctx, suite.params)
	assert.ErrorIs(suite.T(), err, common.ErrOverlapConflict)
}

func (suite *ReservationRepoTestSuite) TestBook_SlotNotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT owner_id, price_per_hour, lifecycle_state, auto_confirm`).
		WithArgs(suite.params.TenantCode, suite.params.SlotID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	_, err := suite.repo.Book(suite.ctx, suite.params)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ReservationRepoTestSuite) TestBook_QuoteOnlySlot() {
	suite.mock.ExpectBegin()
	suite.expectSlotLock(nil, "active", false)
	suite.mock.ExpectRollback()

	_, err := suite.repo.Book(suite.ctx, suite.params)
	assert.ErrorIs(suite.T(), err, common.ErrNoInstantBooking)
}

func (suite *ReservationRepoTestSuite) TestBook_SlotNotActive() {
	price := 50.0

	suite.mock.ExpectBegin()
	suite.expectSlotLock(&price, "under_maintenance", false)
	suite.mock.ExpectRollback()

	_, err := suite.repo.Book(suite.ctx, suite.params)
	assert.ErrorIs(suite.T(), err, common.ErrResourceUnavailable)
}

func (suite *ReservationRepoTestSuite) TestBook_FractionalHoursRoundToCents() {
	price := 33.33
	now := time.Now()
	suite.params.EndTime = suite.params.StartTime.Add(90 * time.Minute)

	suite.mock.ExpectBegin()
	suite.expectSlotLock(&price, "active", false)
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(suite.params.SlotID, suite.params.StartTime, suite.params.EndTime).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs(pgxmock.AnyArg(), suite.params.TenantCode, suite.params.SlotID, suite.params.RenterID, suite.ownerID,
			suite.params.StartTime, suite.params.EndTime, 50.0, "pending").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectCommit()

	reservation, err := suite.repo.Book(suite.ctx, suite.params)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 50.0, reservation.TotalPrice, "33.33 * 1.5 = 49.995 rounds to 50.00")
}

func (suite *ReservationRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mock.ExpectQuery(`SELECT id, tenant_code, slot_id`).
		WithArgs("maple-court", id).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByID(suite.ctx, "maple-court", id)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ReservationRepoTestSuite) TestCancelNonTerminal_Wins() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE reservations`).
		WithArgs("maple-court", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	cancelled, err := suite.repo.CancelNonTerminal(suite.ctx, "maple-court", id)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), cancelled)
}

func (suite *ReservationRepoTestSuite) TestCancelNonTerminal_AlreadyTerminal() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE reservations`).
		WithArgs("maple-court", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	cancelled, err := suite.repo.CancelNonTerminal(suite.ctx, "maple-court", id)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), cancelled)
}

func (suite *ReservationRepoTestSuite) TestCountActiveBySlot() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs("maple-court", suite.slotID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountActiveBySlot(suite.ctx, "maple-court", suite.slotID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *ReservationRepoTestSuite) TestCompleteElapsed() {
	now := time.Now()
	suite.mock.ExpectExec(`UPDATE reservations`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	n, err := suite.repo.CompleteElapsed(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), n)
}

func (suite *ReservationRepoTestSuite) TestMarkNoShows() {
	now := time.Now()
	suite.mock.ExpectExec(`UPDATE reservations`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := suite.repo.MarkNoShows(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)
}
