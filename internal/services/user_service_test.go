package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestRegister_CreatesUserAndProfile(t *testing.T) {
	svc, _ := newTestUserService(t)

	user := registerTestUser(t, svc)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)

	// The post-create hook must have produced the profile row.
	view, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, view.ID)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.False(t, view.IsEmailVerified)
	assert.Nil(t, view.BirthDate)
}

func TestRegister_DuplicateUsernameAndEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "Secur3!!"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "username")

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "alice@example.com", Password: "Secur3!!"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "email")

	// Email uniqueness is case-insensitive.
	_, err = svc.Register(RegisterInput{Username: "carol", Email: "ALICE@EXAMPLE.COM", Password: "Secur3!!"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "email")
}

func TestRegister_PasswordPolicy(t *testing.T) {
	svc, _ := newTestUserService(t)

	tests := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "Ab1!"},
		{name: "entirely numeric", password: "1234567890"},
		{name: "same as username", password: "dave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(RegisterInput{Username: "dave", Email: "dave@example.com", Password: tt.password})
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, "password")
		})
	}
}

func TestRegister_InvalidUsername(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Register(RegisterInput{Username: "has spaces", Email: "b@example.com", Password: "Secur3!!"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "username")

	// Single-character usernames are allowed.
	_, err = svc.Register(RegisterInput{Username: "a", Email: "a@example.com", Password: "Secur3!!"})
	assert.NoError(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	svc, _ := newTestUserService(t)
	registerTestUser(t, svc)

	// By username.
	user, err := svc.AuthenticateUser("alice", "Secur3!!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, user.LastLogin)

	// By email.
	user, err = svc.AuthenticateUser("alice@example.com", "Secur3!!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Wrong password and unknown identifier are indistinguishable.
	_, err = svc.AuthenticateUser("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.AuthenticateUser("nobody", "Secur3!!")
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.AuthenticateUser("nobody@example.com", "Secur3!!")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticateUser_InactiveAccount(t *testing.T) {
	db := newTestDB(t)
	eventSvc := NewEventService(db)
	svc := NewUserService(db, eventSvc)
	user := registerTestUser(t, svc)

	_, err := db.Exec("UPDATE users SET is_active = 0 WHERE id = ?", user.ID)
	require.NoError(t, err)

	_, err = svc.AuthenticateUser("alice", "Secur3!!")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSetPassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := registerTestUser(t, svc)

	require.NoError(t, svc.SetPassword(user.ID, "N3wSecret!"))

	fresh, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(fresh.PasswordHash), []byte("N3wSecret!")))

	assert.ErrorIs(t, svc.SetPassword("no-such-user", "N3wSecret!"), ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := registerTestUser(t, svc)

	bio := "Explorer of rabbit holes"
	location := "Wonderland"
	phone := "+4412345678"
	birth := "1852-05-04"
	view, err := svc.UpdateProfile(user.ID, ProfilePatch{
		Bio:         &bio,
		Location:    &location,
		PhoneNumber: &phone,
		BirthDate:   &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, view.Bio)
	assert.Equal(t, location, view.Location)
	assert.Equal(t, phone, view.PhoneNumber)
	require.NotNil(t, view.BirthDate)
	assert.Equal(t, birth, *view.BirthDate)

	// Partial update leaves other fields untouched.
	first := "Alicia"
	view, err = svc.UpdateProfile(user.ID, ProfilePatch{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", view.FirstName)
	assert.Equal(t, bio, view.Bio)

	// Clearing the birth date.
	empty := ""
	view, err = svc.UpdateProfile(user.ID, ProfilePatch{BirthDate: &empty})
	require.NoError(t, err)
	assert.Nil(t, view.BirthDate)
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := registerTestUser(t, svc)
	_, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Secur3!!"})
	require.NoError(t, err)

	var vErr *ValidationError

	taken := "bob@example.com"
	_, err = svc.UpdateProfile(user.ID, ProfilePatch{Email: &taken})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "email")

	bad := "04-05-1852"
	_, err = svc.UpdateProfile(user.ID, ProfilePatch{BirthDate: &bad})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "birth_date")

	// Updating own email to its current value is fine.
	own := "alice@example.com"
	_, err = svc.UpdateProfile(user.ID, ProfilePatch{Email: &own})
	assert.NoError(t, err)
}

func TestEvents_RecordedForAccountActions(t *testing.T) {
	svc, eventSvc := newTestUserService(t)
	registerTestUser(t, svc)
	_, err := svc.AuthenticateUser("alice", "Secur3!!")
	require.NoError(t, err)

	events, err := eventSvc.GetRecentEvents(10)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "user.register")
	assert.Contains(t, types, "user.login")
}
