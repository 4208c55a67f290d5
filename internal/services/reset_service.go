package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/mail"
)

// ResetServiceProvider defines the interface for the password reset flow.
type ResetServiceProvider interface {
	Request(email string) error
	Confirm(uid, token, newPassword, confirmPassword string) error
}

// ResetService implements the password-reset flow: a reset request mails a
// single-use token link; confirming it rewrites the credential, which in turn
// invalidates every token issued for the old credential.
type ResetService struct {
	userSvc      UserServiceProvider
	generator    *auth.ResetTokenGenerator
	mailer       mail.Mailer
	resetURLBase string
	expiryHours  int
	eventSvc     EventServiceProvider
}

// NewResetService creates a new ResetService.
func NewResetService(userSvc UserServiceProvider, generator *auth.ResetTokenGenerator, mailer mail.Mailer, resetURLBase string, expiryHours int, eventSvc EventServiceProvider) *ResetService {
	return &ResetService{
		userSvc:      userSvc,
		generator:    generator,
		mailer:       mailer,
		resetURLBase: resetURLBase,
		expiryHours:  expiryHours,
		eventSvc:     eventSvc,
	}
}

// Request looks up the account and mails a reset link. A missing account is
// not an error: the caller must answer identically either way so responses
// cannot be used to probe which emails are registered.
func (s *ResetService) Request(email string) error {
	user, err := s.userSvc.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := s.generator.Make(user)
	resetURL := fmt.Sprintf("%s?uid=%s&token=%s", s.resetURLBase, auth.EncodeUID(user.ID), token)

	body := fmt.Sprintf(`Hello %s,

You requested a password reset for your Meeting App account.

Reset your password by clicking this link: %s

This link will expire in %d hours for security reasons.

If you didn't request this password reset, please ignore this email.

Best regards,
The Meeting App Team`, user.FullName(), resetURL, s.expiryHours)

	if err := s.mailer.Send(mail.Message{
		To:      user.Email,
		Subject: "Password Reset Request - Meeting App",
		Body:    body,
	}); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.eventSvc.CreateEvent("password.reset.request", "info", fmt.Sprintf("Password reset email sent to %s", user.Email), &user.ID)
	return nil
}

// Confirm validates a reset token and sets the new password. The token is
// bound to the current password hash, so a successful confirm makes the same
// token (and every older one) fail on replay.
func (s *ResetService) Confirm(uid, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return NewValidationError("new_password", "Password fields didn't match.")
	}

	userID, err := auth.DecodeUID(uid)
	if err != nil {
		return ErrInvalidToken
	}
	user, err := s.userSvc.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if !s.generator.Check(user, token) {
		return ErrInvalidToken
	}

	if msgs := passwordPolicyViolations(newPassword, user.Username, user.Email); len(msgs) > 0 {
		vErr := &ValidationError{}
		for _, msg := range msgs {
			vErr.Add("new_password", msg)
		}
		return vErr
	}

	if err := s.userSvc.SetPassword(user.ID, newPassword); err != nil {
		return err
	}
	s.eventSvc.CreateEvent("password.reset.confirm", "info", fmt.Sprintf("Password reset completed for %s", user.Username), &user.ID)
	return nil
}
