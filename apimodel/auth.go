package apimodel

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"` // Always "Bearer"
	ExpiresIn    int64  `json:"expiresIn,omitempty"` // Access token lifetime in seconds
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest is the optional body of POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// MeResponse is the actor snapshot returned by GET /auth/me.
type MeResponse struct {
	MemberID          int64    `json:"memberId"`
	LoginID           string   `json:"loginId"`
	MemberName        string   `json:"memberName"`
	DeptID            int64    `json:"deptId,omitempty"`
	Position          string   `json:"position,omitempty"`
	IsInitialPassword bool     `json:"isInitialPassword"`
	Roles             []string `json:"roles"`
}

// ChangePasswordRequest is the body of PUT /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
