package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmarceta/meet-accounts-be/internal/models"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9@.+_-]{1,150}$`)

// RegisterInput carries the validated registration fields. Password equality
// with its confirmation is checked at the endpoint layer.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// ProfilePatch carries a partial profile update; nil fields are left as-is.
type ProfilePatch struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Bio         *string
	Location    *string
	BirthDate   *string // YYYY-MM-DD, empty string clears
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(input RegisterInput) (models.User, error)
	AuthenticateUser(identifier, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	SetPassword(id, newPassword string) error
	GetProfile(userID string) (models.ProfileView, error)
	UpdateProfile(userID string, patch ProfilePatch) (models.ProfileView, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventSvc EventServiceProvider) *UserService {
	return &UserService{db: db, eventSvc: eventSvc}
}

// Register creates a new user and their profile in a single transaction. The
// profile insert is the explicit post-create hook: a user row never exists
// without its profile row.
func (s *UserService) Register(input RegisterInput) (models.User, error) {
	vErr := &ValidationError{}
	if !usernameRe.MatchString(input.Username) {
		vErr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	for _, msg := range passwordPolicyViolations(input.Password, input.Username, input.Email) {
		vErr.Add("password", msg)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", input.Username).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists {
		vErr.Add("username", "A user with this username already exists.")
	}
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", input.Email).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists {
		vErr.Add("email", "A user with this email already exists.")
	}
	if !vErr.Empty() {
		return models.User{}, vErr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}

	_, err = tx.Exec(
		"INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_active, is_staff, date_joined) VALUES (?, ?, ?, ?, ?, ?, 1, 0, ?)",
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.DateJoined,
	)
	if err != nil {
		return models.User{}, err
	}
	if _, err = tx.Exec("INSERT INTO profiles (user_id) VALUES (?)", user.ID); err != nil {
		return models.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.User{}, err
	}

	s.eventSvc.CreateEvent("user.register", "info", fmt.Sprintf("User %s registered", user.Username), &user.ID)
	return user, nil
}

// AuthenticateUser verifies a user's credentials. The identifier may be a
// username or an email address. Failures are indistinguishable to the caller.
func (s *UserService) AuthenticateUser(identifier, password string) (models.User, error) {
	user, err := s.getUserByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a hash comparison so lookup misses take as long as
			// password mismatches.
			bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
			return models.User{}, ErrAuthentication
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrAuthentication
	}
	if !user.IsActive {
		return models.User{}, ErrAuthentication
	}

	now := time.Now().UTC()
	if _, err := s.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", now, user.ID); err != nil {
		return models.User{}, err
	}
	user.LastLogin = &now

	s.eventSvc.CreateEvent("user.login", "info", fmt.Sprintf("User %s signed in", user.Username), &user.ID)
	return user, nil
}

func (s *UserService) getUserByIdentifier(identifier string) (models.User, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.GetUserByEmail(identifier)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return models.User{}, err
		}
	}
	return s.getUserWhere("username = ?", identifier)
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	return s.getUserWhere("id = ?", id)
}

// GetUserByEmail retrieves a single user by their email.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	return s.getUserWhere("email = ?", email)
}

func (s *UserService) getUserWhere(cond string, arg interface{}) (models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	row := s.db.QueryRow(
		"SELECT id, username, email, first_name, last_name, password_hash, is_active, is_staff, date_joined, last_login FROM users WHERE "+cond, arg,
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsActive, &user.IsStaff, &user.DateJoined, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return user, nil
}

// SetPassword hashes and stores a new password for a user. Policy checks are
// the caller's responsibility.
func (s *UserService) SetPassword(id, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	res, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfile returns the flattened user+profile document.
func (s *UserService) GetProfile(userID string) (models.ProfileView, error) {
	var view models.ProfileView
	var lastLogin sql.NullTime
	var birthDate sql.NullString
	row := s.db.QueryRow(`
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.date_joined, u.last_login,
		       p.is_email_verified, p.phone_number, p.bio, p.location, p.birth_date
		FROM users u JOIN profiles p ON p.user_id = u.id
		WHERE u.id = ?`, userID)
	err := row.Scan(&view.ID, &view.Username, &view.Email, &view.FirstName, &view.LastName,
		&view.DateJoined, &lastLogin, &view.IsEmailVerified, &view.PhoneNumber, &view.Bio,
		&view.Location, &birthDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ProfileView{}, ErrNotFound
		}
		return models.ProfileView{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		view.LastLogin = &t
	}
	if birthDate.Valid {
		d := birthDate.String
		view.BirthDate = &d
	}
	return view, nil
}

// UpdateProfile applies a partial update to the user and profile rows.
// Username, staff/active flags and the email-verified flag are not editable
// through this path.
func (s *UserService) UpdateProfile(userID string, patch ProfilePatch) (models.ProfileView, error) {
	vErr := &ValidationError{}
	if patch.BirthDate != nil && *patch.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", *patch.BirthDate); err != nil {
			vErr.Add("birth_date", "Date has wrong format. Use YYYY-MM-DD.")
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.ProfileView{}, err
	}
	defer tx.Rollback()

	if patch.Email != nil {
		var exists bool
		if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)", *patch.Email, userID).Scan(&exists); err != nil {
			return models.ProfileView{}, err
		}
		if exists {
			vErr.Add("email", "A user with this email already exists.")
		}
	}
	if !vErr.Empty() {
		return models.ProfileView{}, vErr
	}

	if patch.Email != nil || patch.FirstName != nil || patch.LastName != nil {
		set := []string{}
		args := []interface{}{}
		if patch.Email != nil {
			set = append(set, "email = ?")
			args = append(args, *patch.Email)
		}
		if patch.FirstName != nil {
			set = append(set, "first_name = ?")
			args = append(args, *patch.FirstName)
		}
		if patch.LastName != nil {
			set = append(set, "last_name = ?")
			args = append(args, *patch.LastName)
		}
		args = append(args, userID)
		if _, err := tx.Exec("UPDATE users SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
			return models.ProfileView{}, err
		}
	}

	if patch.PhoneNumber != nil || patch.Bio != nil || patch.Location != nil || patch.BirthDate != nil {
		set := []string{"updated_at = CURRENT_TIMESTAMP"}
		args := []interface{}{}
		if patch.PhoneNumber != nil {
			set = append(set, "phone_number = ?")
			args = append(args, *patch.PhoneNumber)
		}
		if patch.Bio != nil {
			set = append(set, "bio = ?")
			args = append(args, *patch.Bio)
		}
		if patch.Location != nil {
			set = append(set, "location = ?")
			args = append(args, *patch.Location)
		}
		if patch.BirthDate != nil {
			set = append(set, "birth_date = ?")
			if *patch.BirthDate == "" {
				args = append(args, nil)
			} else {
				args = append(args, *patch.BirthDate)
			}
		}
		args = append(args, userID)
		if _, err := tx.Exec("UPDATE profiles SET "+strings.Join(set, ", ")+" WHERE user_id = ?", args...); err != nil {
			return models.ProfileView{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.ProfileView{}, err
	}
	return s.GetProfile(userID)
}

// passwordPolicyViolations applies the password complexity policy: minimum
// length, not entirely numeric, not identical to the username or the email
// local part.
func passwordPolicyViolations(password, username, email string) []string {
	var msgs []string
	if len(password) < 8 {
		msgs = append(msgs, "This password is too short. It must contain at least 8 characters.")
	}
	allDigits := password != ""
	for _, r := range password {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	if strings.EqualFold(password, username) || strings.EqualFold(password, local) {
		msgs = append(msgs, "The password is too similar to other personal information.")
	}
	return msgs
}
