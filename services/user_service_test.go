package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"teamwork/authz"
	"teamwork/store/storetest"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sess, err := h.svc.Users.Register(ctx, RegisterInput{Name: "Alice", Username: " Alice ", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "alice", sess.Username)
	require.NotEmpty(t, sess.Token)

	claims, err := h.issuer.Verify(sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, claims.UserID)

	stored, err := h.store.GetUser(ctx, sess.ID)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", stored.Password)

	_, err = h.svc.Users.Register(ctx, RegisterInput{Name: "A", Username: "alice", Password: "x"})
	requireStatus(t, err, http.StatusBadRequest, "Username is already taken")

	_, err = h.svc.Users.Register(ctx, RegisterInput{Username: "bob", Password: "x"})
	requireStatus(t, err, http.StatusBadRequest, "Please provide all the needed information")

	login, err := h.svc.Users.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, sess.ID, login.ID)

	_, err = h.svc.Users.Login(ctx, "alice", "wrong")
	requireStatus(t, err, http.StatusBadRequest, "Incorrect username or password")

	_, err = h.svc.Users.Login(ctx, "nobody", "x")
	requireStatus(t, err, http.StatusBadRequest, "Incorrect username or password")
}

func TestMeAndSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	storetest.User(t, h.store, "alicia")
	storetest.User(t, h.store, "bob")

	me, err := h.svc.Users.Me(ctx, as(alice))
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)

	_, err = h.svc.Users.Me(ctx, authz.Identity{UserID: "ghost"})
	requireStatus(t, err, http.StatusNotFound, "User not found")

	found, err := h.svc.Users.SearchUsers(ctx, as(alice), "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "alicia", found[0].Username)

	found, err = h.svc.Users.SearchUsers(ctx, as(alice), "")
	require.NoError(t, err)
	require.Empty(t, found)
}
