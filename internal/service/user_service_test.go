package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

func TestUserService_RegisterUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	in := NewUserInput{
		ID:     "firebase-uid-1",
		Name:   "Asha",
		Email:  "asha@example.com",
		Photo:  "https://img.example/asha",
		Gender: "female",
		DOB:    "1999-08-20",
	}

	user, created, err := svc.RegisterUser(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, time.Date(1999, time.August, 20, 0, 0, 0, 0, time.UTC), user.DOB)

	// signing in again returns the stored account untouched
	in.Name = "Someone Else"
	user, created, err = svc.RegisterUser(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Asha", user.Name)
}

func TestUserService_RegisterUserValidation(t *testing.T) {
	svc := newTestEnv(t).users()
	ctx := context.Background()

	_, _, err := svc.RegisterUser(ctx, NewUserInput{ID: "u1", Name: "A"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "Please enter all fields", err.Error())

	_, _, err = svc.RegisterUser(ctx, NewUserInput{
		ID: "u1", Name: "A", Email: "a@example.com", Photo: "p", Gender: "female", DOB: "yesterday",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "dob must be a date", err.Error())
}

func TestUserService_IsAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()
	env.seedUser(t, "root", model.RoleAdmin)
	env.seedUser(t, "alice", model.RoleUser)

	admin, err := svc.IsAdmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, admin)

	_, err = svc.IsAdmin(ctx, "ghost")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "User not found", err.Error())
}

func TestUserService_ListGetDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()
	env.seedUser(t, "alice", model.RoleUser)
	env.seedUser(t, "bob", model.RoleUser)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, svc.DeleteUser(ctx, "alice"))
	_, err = svc.GetUser(ctx, "alice")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.DeleteUser(ctx, "alice")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
