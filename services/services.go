// services/services.go - Mutation handlers shared wiring
package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"teamwork/errs"
	"teamwork/events"
	"teamwork/store"
	"teamwork/token"
)

// Services groups the mutation handlers. Every operation takes the caller's
// identity explicitly and expects the authorization chain to have run.
type Services struct {
	Users         *UserService
	Teams         *TeamService
	Tasks         *TaskService
	Announcements *AnnouncementService
	Chats         *ChatService
}

func New(s store.Store, broker events.Broker, issuer *token.Issuer, bcryptCost int, log *zap.Logger) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	return &Services{
		Users:         NewUserService(s, issuer, bcryptCost, log),
		Teams:         NewTeamService(s, log),
		Tasks:         NewTaskService(s, log),
		Announcements: NewAnnouncementService(s, log),
		Chats:         NewChatService(s, broker, log),
	}
}

type base struct {
	store store.Store
	log   *zap.Logger
}

// fail maps a store error to the taxonomy. Errors that already carry a
// status pass through; store.ErrNotFound becomes a 404 with notFound when
// one is given; anything else is a 500 with failed.
func (b base) fail(err error, notFound, failed string) error {
	if _, ok := errs.As(err); ok {
		return err
	}
	if notFound != "" && errors.Is(err, store.ErrNotFound) {
		return errs.NotFound(notFound)
	}
	b.log.Error(failed, zap.Error(err))
	return errs.Dependency(failed, err)
}

func now() time.Time {
	return time.Now().UTC()
}

// parseDueDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns midnight UTC of that date. Empty input means no due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return &d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := ts.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &day, nil
	}
	return nil, errs.Validation("Invalid due date format")
}
