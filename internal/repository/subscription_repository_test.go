package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

func TestSubscriptionRepositoryQuranSubscriptions(t *testing.T) {
	db, mock, cleanup := newUnifiedRepoMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "academy_id", "student_id", "status", "subscription_type", "total_sessions", "sessions_used", "created_at"}).
		AddRow("q1", "t1", "l1", "active", "individual", 12, 4, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM quran_subscriptions s")).
		WillReturnRows(rows)

	subs, err := repo.QuranSubscriptions(context.Background(), models.SubscriptionQuery{TenantID: "t1", LearnerIDs: []string{"l1"}})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 12, *subs[0].TotalSessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryStatusFilter(t *testing.T) {
	db, mock, cleanup := newUnifiedRepoMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND s.academy_id = $1 AND s.student_id = ANY($2) AND LOWER(s.status) = ANY($3) ORDER BY s.created_at DESC")).
		WithArgs("t1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "academy_id", "student_id", "status", "course_type", "attendance_count", "created_at"}).
			AddRow("c1", "t1", "l1", "active", "interactive", 3, time.Now()))

	subs, err := repo.CourseSubscriptions(context.Background(), models.SubscriptionQuery{TenantID: "t1", LearnerIDs: []string{"l1"}, Statuses: []string{"active"}})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, models.CourseTypeInteractive, subs[0].CourseType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newUnifiedRepoMock(t)
	defer cleanup()
	repo := NewSubscriptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM academic_subscriptions s")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "academy_id", "student_id", "status", "sessions_per_week", "created_at"}).
			AddRow("a1", "t1", "l1", "active", 2, time.Now()))

	record, err := repo.GetByID(context.Background(), models.KindAcademic, "a1")
	require.NoError(t, err)
	academic, ok := record.(*models.AcademicSubscription)
	require.True(t, ok)
	assert.Equal(t, 2, *academic.SessionsPerWeek)

	mock.ExpectQuery(regexp.QuoteMeta("FROM quran_subscriptions s")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), models.KindQuran, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
