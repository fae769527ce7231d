package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-asset-console/members"
	"github.com/jrsteele09/go-asset-console/menus"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAdminName = "Administrator"
)

// InitialiseSystem seeds the console menu tree and roles, then makes sure the
// administrator member exists. It returns the generated administrator
// password on first creation (empty string if already exists or configured).
func (s *Server) InitialiseSystem(ctx context.Context) (generatedPassword string, err error) {
	log.Info().Msg("Bootstrap: checking system configuration")

	if err := menus.SeedDefaults(s.repos.Menus); err != nil {
		return "", fmt.Errorf("failed to seed menus and roles: %w", err)
	}

	loginID := s.config.GetAdminLoginID()
	generatedPassword, err = s.bootstrapAdmin(ctx, loginID)
	if err != nil {
		return "", fmt.Errorf("failed to bootstrap administrator: %w", err)
	}

	if generatedPassword != "" {
		log.Info().
			Str("baseUrl", s.config.GetBaseURL()).
			Str("issuer", s.config.GetIssuer()).
			Str("loginId", loginID).
			Str("password", generatedPassword).
			Msg("Bootstrap complete. SAVE THIS PASSWORD - it will not be displayed again; it must be changed on first login")
	}
	return generatedPassword, nil
}

func (s *Server) bootstrapAdmin(_ context.Context, loginID string) (generatedPassword string, err error) {
	_, err = s.repos.Members.GetByLoginID(loginID)
	if err == nil {
		log.Info().Str("loginId", loginID).Msg("Bootstrap: administrator exists")
		return "", nil
	}
	if !errors.Is(err, members.ErrMemberNotFound) {
		return "", fmt.Errorf("failed to look up administrator: %w", err)
	}

	password := s.config.GetAdminPassword()
	if password == "" {
		// Generate a secure random password
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = base64.RawURLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := members.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &members.Member{
		LoginID:           loginID,
		Name:              DefaultAdminName,
		PasswordHash:      passwordHash,
		Roles:             []string{members.RoleAdmin},
		IsInitialPassword: true,
		Active:            true,
	}
	if err := s.repos.Members.Upsert(admin); err != nil {
		return "", fmt.Errorf("failed to store administrator: %w", err)
	}
	return generatedPassword, nil
}
