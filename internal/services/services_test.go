package services

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/database"
	"github.com/dmarceta/meet-accounts-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUserService(t *testing.T) (*UserService, *EventService) {
	t.Helper()
	db := newTestDB(t)
	eventSvc := NewEventService(db)
	return NewUserService(db, eventSvc), eventSvc
}

func registerTestUser(t *testing.T, svc *UserService) models.User {
	t.Helper()
	user, err := svc.Register(RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		Password:  "Secur3!!",
	})
	require.NoError(t, err)
	return user
}

func newTestIssuer() *auth.Issuer {
	return auth.NewIssuer([]byte("test-secret"), time.Hour, 24*time.Hour)
}
