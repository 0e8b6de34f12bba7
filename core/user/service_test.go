package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/user"
	"github.com/cambria/academy/storage/database/inmem"
	"github.com/cambria/academy/testutil"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo, &testutil.Logger{}), repo
}

func TestService_Provision(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	existing := testutil.CreateUser(t, repo, "Mira", "mira@cambria.edu", user.RoleInstructor, "", true)

	tests := []struct {
		name     string
		email    string
		wantRole user.Role
		wantID   string
		wantErr  bool
	}{
		{name: "existing user is returned as is", email: " MIRA@cambria.edu ", wantRole: user.RoleInstructor, wantID: existing.ID},
		{name: "unknown email becomes a student", email: "new@cambria.edu", wantRole: user.RoleStudent},
		{name: "blank email", email: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Provision(ctx, tt.email, "Someone")
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, usr.Role)
			assert.True(t, usr.IsActive)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, usr.ID)
			}
		})
	}

	// provisioning twice yields the same user
	first, err := svc.Provision(ctx, "twice@cambria.edu", "")
	require.NoError(t, err)
	second, err := svc.Provision(ctx, "Twice@Cambria.edu", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "twice@cambria.edu", second.DisplayName())
}

func TestService_Save(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	validate := testutil.NewValidator()
	existing := testutil.CreateUser(t, repo, "Ana", "ana@cambria.edu", user.RoleStudent, "A", true)
	inactive := false

	tests := []struct {
		name    string
		uu      user.UpsertUser
		want    func(t *testing.T, usr user.User)
		wantErr bool
	}{
		{name: "invalid role", uu: user.UpsertUser{Email: "x@cambria.edu", Role: "JANITOR"}, wantErr: true},
		{name: "invalid email", uu: user.UpsertUser{Email: "nope", Role: user.RoleStudent}, wantErr: true},
		{
			name: "creates",
			uu:   user.UpsertUser{Name: " Zed ", Email: "ZED@cambria.edu", Role: user.RoleHeadInstructor},
			want: func(t *testing.T, usr user.User) {
				assert.NotEmpty(t, usr.ID)
				assert.Equal(t, "Zed", usr.Name)
				assert.Equal(t, "zed@cambria.edu", usr.Email)
				assert.True(t, usr.IsActive)
			},
		},
		{
			name: "updates by email and keeps the name when blank",
			uu:   user.UpsertUser{Email: "ana@cambria.edu", Role: user.RoleStudent, ClassGroup: "B", IsActive: &inactive},
			want: func(t *testing.T, usr user.User) {
				assert.Equal(t, existing.ID, usr.ID)
				assert.Equal(t, "Ana", usr.Name)
				assert.Equal(t, "B", usr.ClassGroup)
				assert.False(t, usr.IsActive)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uu := tt.uu
			err := uu.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			usr, err := svc.Save(ctx, uu)
			require.NoError(t, err)
			tt.want(t, usr)
		})
	}
}

func TestService_Deactivate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Ana", "ana@cambria.edu", user.RoleStudent, "", true)

	got, err := svc.Deactivate(ctx, usr.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := svc.Query(ctx, user.QueryFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Deactivate(ctx, "missing")
	assert.Equal(t, user.ErrNotFound, err)
}
