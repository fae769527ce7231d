// Package auth implements the console's credential endpoints: password
// login with account locking, refresh token rotation, logout and password
// changes.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-asset-console/apimodel"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/internal/utils"
	"github.com/jrsteele09/go-asset-console/members"
	"github.com/jrsteele09/go-asset-console/token/jwt"
	"github.com/jrsteele09/go-asset-console/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultMaxLoginFailures = 5

// Repos holds all repository dependencies for the AuthService
type Repos struct {
	Members members.Repo // Repository for member data
}

// Tokens holds the token services the AuthService issues and checks tokens with
type Tokens struct {
	Creator   *jwt.Creator          // Access token minting
	Inspector *jwt.Inspector        // Access token validation
	Refresh   *refresh.Manager      // Refresh token storage and rotation
	Revoked   jwt.RevokedTokenCache // Access tokens revoked at logout
}

// Principal is the authenticated caller of a request.
type Principal struct {
	MemberID int64
	LoginID  string
	Roles    []string
	JTI      string
}

// IsAdmin reports whether the principal holds the administrator role.
func (p *Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == members.RoleAdmin {
			return true
		}
	}
	return false
}

// AuthService provides the console's authentication operations.
type AuthService struct {
	repos       Repos
	tokens      Tokens
	maxFailures int
	nowTime     func() time.Time // nowTime function (injectable for testing)
}

// AuthServiceOption defines a function type to modify the AuthService instance.
type AuthServiceOption func(*AuthService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthServiceOption {
	return func(as *AuthService) {
		as.nowTime = nowFunc
	}
}

// WithMaxLoginFailures sets how many consecutive failures lock an account.
func WithMaxLoginFailures(n int) AuthServiceOption {
	return func(as *AuthService) {
		as.maxFailures = n
	}
}

// NewAuthService initializes a new AuthService with required dependencies.
func NewAuthService(repos Repos, tokens Tokens, options ...AuthServiceOption) (*AuthService, error) {
	if repos.Members == nil {
		return nil, errors.New("[NewAuthService] Members repo is required")
	}
	if tokens.Creator == nil {
		return nil, errors.New("[NewAuthService] token Creator is required")
	}
	if tokens.Inspector == nil {
		return nil, errors.New("[NewAuthService] token Inspector is required")
	}
	if tokens.Refresh == nil {
		return nil, errors.New("[NewAuthService] refresh Manager is required")
	}
	if tokens.Revoked == nil {
		return nil, errors.New("[NewAuthService] revoked token cache is required")
	}

	authService := &AuthService{
		repos:       repos,
		tokens:      tokens,
		maxFailures: defaultMaxLoginFailures,
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}
	return authService, nil
}

// Login checks the credentials and issues an access and refresh token pair.
// A wrong password counts towards the lock; a locked account is rejected
// before the password is checked.
func (as *AuthService) Login(ctx context.Context, loginID, password string) (*apimodel.TokenResponse, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidRequest, MissingCredentialsErr.Error())
	}

	member, err := as.repos.Members.GetByLoginID(loginID)
	if errors.Is(err, members.ErrMemberNotFound) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[AuthService.Login] unknown login id")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Login] GetByLoginID")
	}
	if !member.Active {
		return nil, errors.Wrap(apperrors.ErrAccountInactive, "[AuthService.Login]")
	}
	if member.Locked {
		return nil, errors.Wrap(apperrors.ErrAccountLocked, "[AuthService.Login]")
	}

	if !members.CheckPasswordHash(password, member.PasswordHash) {
		if member.RegisterLoginFailure(as.maxFailures) {
			log.Warn().Str("loginId", member.LoginID).Int("failures", member.LoginFailCount).Msg("account locked")
		}
		if err := as.repos.Members.Upsert(member); err != nil {
			return nil, errors.Wrap(err, "[AuthService.Login] record failure")
		}
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[AuthService.Login] password mismatch")
	}

	member.RegisterLogin(as.nowTime())
	if err := as.repos.Members.Upsert(member); err != nil {
		return nil, errors.Wrap(err, "[AuthService.Login] record login")
	}

	rt, err := as.tokens.Refresh.Create(ctx, member.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Login] create refresh token")
	}
	return as.tokenResponse(member, rt.Token)
}

// Refresh rotates refreshToken and mints a new access token for its member.
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error) {
	rt, err := as.tokens.Refresh.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Refresh] Rotate")
	}

	member, err := as.repos.Members.GetByID(rt.MemberID)
	if err != nil || !member.Active || member.Locked {
		if derr := as.tokens.Refresh.Delete(ctx, rt.Token); derr != nil {
			log.Warn().Err(derr).Int64("memberId", rt.MemberID).Msg("failed to delete refresh token of invalid member")
		}
		return nil, errors.Wrap(apperrors.ErrInvalidRefreshToken, "[AuthService.Refresh] member no longer valid")
	}
	return as.tokenResponse(member, rt.Token)
}

// Logout removes every refresh token the member holds and revokes the
// presented access token until it would have expired anyway.
func (as *AuthService) Logout(ctx context.Context, principal *Principal, accessToken string) error {
	n, err := as.tokens.Refresh.RevokeAll(ctx, principal.MemberID)
	if err != nil {
		return errors.Wrap(err, "[AuthService.Logout] RevokeAll")
	}

	if accessToken != "" {
		jti, exp, err := as.tokens.Inspector.ParseAndExtractJTI(accessToken)
		if err != nil {
			return errors.Wrap(err, "[AuthService.Logout] ParseAndExtractJTI")
		}
		if err := as.tokens.Revoked.Add(jti, exp); err != nil {
			return errors.Wrap(err, "[AuthService.Logout] revoke access token")
		}
	}

	log.Debug().Int64("memberId", principal.MemberID).Int("refreshTokens", n).Msg("logged out")
	return nil
}

// Authenticate validates a bearer token and returns its principal.
func (as *AuthService) Authenticate(rawToken string) (*Principal, error) {
	info, err := as.tokens.Inspector.Introspect(rawToken)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Authenticate]")
	}
	if !info.Active {
		return nil, errors.Wrap(apperrors.ErrTokenRevoked, "[AuthService.Authenticate]")
	}
	return &Principal{
		MemberID: info.MemberID,
		LoginID:  utils.Value(info.Sub),
		Roles:    info.Roles,
		JTI:      info.JTI,
	}, nil
}

// Me returns the member behind memberID as the console's actor snapshot.
func (as *AuthService) Me(memberID int64) (*apimodel.MeResponse, error) {
	member, err := as.activeMember(memberID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Me]")
	}

	roles := member.Roles
	if roles == nil {
		roles = []string{}
	}
	return &apimodel.MeResponse{
		MemberID:          member.ID,
		LoginID:           member.LoginID,
		MemberName:        member.Name,
		DeptID:            member.DeptID,
		Position:          member.Position,
		IsInitialPassword: member.IsInitialPassword,
		Roles:             roles,
	}, nil
}

// ChangePassword replaces the member's password after checking the current
// one. It clears the initial password flag.
func (as *AuthService) ChangePassword(memberID int64, req apimodel.ChangePasswordRequest) error {
	member, err := as.activeMember(memberID)
	if err != nil {
		return errors.Wrap(err, "[AuthService.ChangePassword]")
	}
	if !members.CheckPasswordHash(req.CurrentPassword, member.PasswordHash) {
		// A 401 here would end the caller's session.
		return errors.Wrap(apperrors.ErrInvalidRequest, "current password does not match")
	}
	if req.CurrentPassword == req.NewPassword {
		return errors.Wrap(apperrors.ErrWeakPassword, SamePasswordErr.Error())
	}
	if err := members.ValidatePasswordStrength(req.NewPassword); err != nil {
		return errors.Wrap(apperrors.ErrWeakPassword, err.Error())
	}

	hash, err := members.HashPassword(req.NewPassword)
	if err != nil {
		return errors.Wrap(err, "[AuthService.ChangePassword] HashPassword")
	}
	member.PasswordHash = hash
	member.IsInitialPassword = false
	member.PasswordChangedAt = as.nowTime()
	if err := as.repos.Members.Upsert(member); err != nil {
		return errors.Wrap(err, "[AuthService.ChangePassword] Upsert")
	}
	return nil
}

func (as *AuthService) activeMember(memberID int64) (*members.Member, error) {
	member, err := as.repos.Members.GetByID(memberID)
	if errors.Is(err, members.ErrMemberNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !member.Active {
		return nil, apperrors.ErrAccountInactive
	}
	return member, nil
}

func (as *AuthService) tokenResponse(member *members.Member, refreshToken string) (*apimodel.TokenResponse, error) {
	accessToken, _, err := as.tokens.Creator.CreateAccessToken(member)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService] CreateAccessToken")
	}
	return &apimodel.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    as.tokens.Creator.ExpiresIn(),
	}, nil
}
