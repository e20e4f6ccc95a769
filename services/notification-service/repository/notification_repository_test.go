package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yashrajoria/shopswift/services/notification-service/models"
)

func setupMockDB(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return NewNotificationRepository(gormDB), mock
}

func TestSaveLog(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "notification_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	entry := &models.NotificationLog{
		EventType: "order_created",
		EventKey:  "o1",
		UserID:    "u1",
		Recipient: "alice@example.com",
		Channel:   models.ChannelEmail,
		Status:    models.StatusSent,
		Attempts:  1,
	}
	require.NoError(t, repo.SaveLog(context.Background(), entry))
	assert.EqualValues(t, 1, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLogs(t *testing.T) {
	t.Run("filters and pages", func(t *testing.T) {
		repo, mock := setupMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "notification_logs" WHERE user_id = $1 AND status = $2`)).
			WithArgs("u1", models.StatusFailed).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notification_logs" WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`)).
			WithArgs("u1", models.StatusFailed, 2, 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "user_id", "status", "created_at"}).
				AddRow(7, "payment_failed", "u1", models.StatusFailed, time.Now()))

		logs, total, err := repo.GetLogs(context.Background(), models.NotificationFilter{
			UserID: "u1",
			Status: models.StatusFailed,
			Page:   2,
			Limit:  2,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, logs, 1)
		assert.Equal(t, "payment_failed", logs[0].EventType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		repo, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "notification_logs"`)).
			WillReturnError(errors.New("db down"))

		_, _, err := repo.GetLogs(context.Background(), models.NotificationFilter{Page: 1, Limit: 10})
		assert.Error(t, err)
	})
}
