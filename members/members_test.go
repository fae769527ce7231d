package members_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-asset-console/members"
	memberrepofake "github.com/jrsteele09/go-asset-console/members/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "Ab1", true},
		{"no upper", "abcdefg1", true},
		{"no lower", "ABCDEFG1", true},
		{"no number", "Abcdefgh", true},
		{"valid", "Abcdefg1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := members.ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := members.HashPassword("Secret123")
	require.NoError(t, err)
	require.True(t, members.CheckPasswordHash("Secret123", hash))
	require.False(t, members.CheckPasswordHash("secret123", hash))
}

func TestLoginFailures(t *testing.T) {
	m := &members.Member{}
	for i := 0; i < 4; i++ {
		require.False(t, m.RegisterLoginFailure(5))
	}
	require.True(t, m.RegisterLoginFailure(5))
	require.True(t, m.Locked)
	require.False(t, m.RegisterLoginFailure(5))

	now := time.Now()
	m.RegisterLogin(now)
	require.Zero(t, m.LoginFailCount)
	require.Equal(t, now, m.LastLogin)
}

func TestFakeMemberRepo(t *testing.T) {
	repo := memberrepofake.NewFakeMemberRepo()

	admin := &members.Member{LoginID: "admin", Roles: []string{members.RoleAdmin}}
	require.NoError(t, repo.Upsert(admin))
	require.Equal(t, int64(1), admin.ID)
	require.NoError(t, repo.Upsert(&members.Member{LoginID: "jdoe", Roles: []string{members.RoleUser}}))

	got, err := repo.GetByLoginID("admin")
	require.NoError(t, err)
	require.True(t, got.IsAdmin())

	got.Name = "changed"
	again, err := repo.GetByID(1)
	require.NoError(t, err)
	require.Empty(t, again.Name)

	_, err = repo.GetByLoginID("nobody")
	require.ErrorIs(t, err, members.ErrMemberNotFound)

	list, err := repo.List(1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "jdoe", list[0].LoginID)
}
