package authz

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"teamwork/errs"
	"teamwork/models"
	"teamwork/store"
)

// Engine builds the checks over a store.
type Engine struct {
	store store.Store
	log   *zap.Logger
}

func NewEngine(s store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: s, log: log.Named("authz")}
}

// Chain composes checks into a chain that logs through the engine's logger.
func (e *Engine) Chain(checks ...Check) Chain {
	return NewChain(e.log, checks...)
}

// miss converts a store error into a denial: not found becomes 404 with
// notFound, anything else a 500 with failed.
func (e *Engine) miss(err error, notFound, failed string) *errs.Error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.NotFound(notFound)
	}
	e.log.Error("store lookup failed", zap.String("reason", failed), zap.Error(err))
	return errs.Dependency(failed, err)
}

func (e *Engine) team(ctx context.Context, id, notFound, failed string) (*models.Team, *errs.Error) {
	if id == "" {
		return nil, errs.NotFound(notFound)
	}
	t, err := e.store.GetTeam(ctx, id)
	if err != nil {
		return nil, e.miss(err, notFound, failed)
	}
	return t, nil
}

func (e *Engine) task(ctx context.Context, id, failed string) (*models.Task, *errs.Error) {
	if id == "" {
		return nil, errs.Validation("Task ID is empty")
	}
	t, err := e.store.GetTask(ctx, id)
	if err != nil {
		return nil, e.miss(err, "Task not found", failed)
	}
	return t, nil
}

func (e *Engine) list(ctx context.Context, id, failed string) (*models.List, *errs.Error) {
	if id == "" {
		return nil, errs.Validation("List ID is empty")
	}
	l, err := e.store.GetList(ctx, id)
	if err != nil {
		return nil, e.miss(err, "List not found", failed)
	}
	return l, nil
}

func (e *Engine) user(ctx context.Context, id, notFound, failed string) (*models.User, *errs.Error) {
	u, err := e.store.GetUser(ctx, id)
	if err != nil {
		return nil, e.miss(err, notFound, failed)
	}
	return u, nil
}
