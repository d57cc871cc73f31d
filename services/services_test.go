package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/events"
	"teamwork/models"
	"teamwork/store"
	"teamwork/store/storetest"
	"teamwork/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type harness struct {
	store  store.Store
	broker *events.Memory
	svc    *Services
	issuer *token.Issuer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := storetest.New(t)
	broker := events.NewMemory(zap.NewNop())
	t.Cleanup(func() { _ = broker.Close() })

	issuer := token.NewIssuer(testSecret, time.Hour)
	return &harness{
		store:  s,
		broker: broker,
		issuer: issuer,
		svc:    New(s, broker, issuer, bcrypt.MinCost, zap.NewNop()),
	}
}

func as(u *models.User) authz.Identity {
	return authz.Identity{UserID: u.ID}
}

func ptr[T any](v T) *T {
	return &v
}

func requireStatus(t *testing.T, err error, status int, reason string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, errs.StatusOf(err), err.Error())
	require.Equal(t, reason, errs.Reason(err))
}

func TestParseDueDate(t *testing.T) {
	d, err := parseDueDate("2024-03-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = parseDueDate("2024-03-01T18:30:00+02:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = parseDueDate("  ")
	require.NoError(t, err)
	require.Nil(t, d)

	_, err = parseDueDate("next week")
	requireStatus(t, err, http.StatusBadRequest, "Invalid due date format")
}

func TestFailMapsStoreErrors(t *testing.T) {
	b := base{log: zap.NewNop()}

	requireStatus(t, b.fail(store.ErrNotFound, "Task not found", "Failed"), http.StatusNotFound, "Task not found")
	requireStatus(t, b.fail(store.ErrNotFound, "", "Failed"), http.StatusInternalServerError, "Failed")
	requireStatus(t, b.fail(errs.Forbidden("no"), "x", "y"), http.StatusForbidden, "no")
	requireStatus(t, b.fail(context.DeadlineExceeded, "x", "Failed"), http.StatusInternalServerError, "Failed")
}
