package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/user"
	"github.com/trezcool/sadaka/testutil"
)

const testPassword = "Kivu#Lake2024"

func TestNewUser_Validate(t *testing.T) {
	app := testutil.NewApp(t)
	testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", testPassword, []string{user.RoleEditor}, true)

	nu := user.NewUser{
		Name:            "  Neema ",
		Username:        "Neema",
		Email:           "NEEMA@sadaka.test",
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Roles:           []string{user.RoleAdmin},
	}
	require.NoError(t, nu.Validate(app.Validate, app.UserSvc))
	assert.Equal(t, "Neema", nu.Name)
	assert.Equal(t, "neema", nu.Username)
	assert.Equal(t, "neema@sadaka.test", nu.Email)

	taken := nu
	taken.Username = "JOEL"
	err := taken.Validate(app.Validate, app.UserSvc)
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, user.ErrUsernameExists, verr.Err)
	assert.Equal(t, "username", verr.Fields[0].Field)

	badRole := nu
	badRole.Roles = []string{"root"}
	assert.Error(t, badRole.Validate(app.Validate, app.UserSvc))
}

func TestService_CreateUpdate(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	usr, err := app.UserSvc.Create(ctx, user.NewUser{
		Name: "Amani", Username: "amani", Email: "amani@sadaka.test", Password: testPassword,
		Roles: []string{user.RoleEditor},
	})
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsStaff())
	assert.False(t, usr.IsAdmin())
	assert.NoError(t, usr.CheckPassword(testPassword))

	got, err := app.UserSvc.GetByUsernameOrEmail(ctx, " AMANI@sadaka.test ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	inactive := false
	uu := user.UpdateUser{Name: "Amani K.", IsActive: &inactive, Roles: []string{user.RoleAdminOwner}}
	require.NoError(t, uu.Validate(got, app.Validate, app.UserSvc))
	assert.Equal(t, "amani", uu.Username, "blank fields keep their value")
	updated, err := app.UserSvc.Update(ctx, got, uu)
	require.NoError(t, err)
	assert.Equal(t, "Amani K.", updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.IsAdmin())
	assert.NoError(t, updated.CheckPassword(testPassword), "password is unchanged")

	require.NoError(t, app.UserSvc.Delete(ctx, usr.ID))
	_, err = app.UserSvc.GetByID(ctx, usr.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_ResetPassword(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	amina := testutil.CreateUser(t, app.UserRepo, "Amina", "amina", "amina@sadaka.test", testPassword, []string{user.RoleEditor}, true)
	testutil.CreateUser(t, app.UserRepo, "Old", "old", "old@sadaka.test", testPassword, []string{user.RoleEditor}, false)

	assert.NoError(t, app.UserSvc.RequestPasswordReset(ctx, "amina@sadaka.test"))
	assert.Equal(t, user.ErrNotFound, errors.Cause(app.UserSvc.RequestPasswordReset(ctx, "old@sadaka.test")))
	assert.Equal(t, user.ErrNotFound, errors.Cause(app.UserSvc.RequestPasswordReset(ctx, "nobody@sadaka.test")))

	token, err := app.UserSvc.MakeResetToken(amina)
	require.NoError(t, err)
	newPwd := "Goma#Volcano2025"

	tests := []struct {
		name  string
		data  user.ResetUserPassword
		field string
	}{
		{name: "bad uid", data: user.ResetUserPassword{UID: "!!", Token: token, Password: newPwd}, field: "uid"},
		{
			name:  "unknown user",
			data:  user.ResetUserPassword{UID: user.EncodeUID(user.User{ID: "7d8f5c4e-0f6b-4f61-9a38-3d0c0a9b1c2d"}), Token: token, Password: newPwd},
			field: "uid",
		},
		{name: "bad token", data: user.ResetUserPassword{UID: user.EncodeUID(amina), Token: "HE4TS-sigsig-sig", Password: newPwd}, field: "token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.UserSvc.ResetPassword(ctx, tt.data)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}

	require.NoError(t, app.UserSvc.ResetPassword(ctx, user.ResetUserPassword{UID: user.EncodeUID(amina), Token: token, Password: newPwd}))
	got, err := app.UserSvc.GetByID(ctx, amina.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword(newPwd))

	require.NoError(t, app.UserSvc.ResetPasswordDirect(ctx, "AMINA", testPassword))
	got, err = app.UserSvc.GetByID(ctx, amina.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword(testPassword))
}
