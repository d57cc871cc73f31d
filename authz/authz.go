// Package authz decides whether an identity may act on the entities named in
// a request. Checks are read-only predicates over store state; a Chain runs
// them in order and stops at the first denial.
package authz

import (
	"context"

	"go.uber.org/zap"

	"teamwork/errs"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
}

// Params carries the entity ids a request targets. Empty means absent.
type Params struct {
	TeamID         string
	ListID         string
	TaskID         string
	AnnouncementID string
	ChatID         string
	Assignee       string
}

// Decision is the outcome of a check or a chain. A zero Err means allow.
type Decision struct {
	Check string
	Err   *errs.Error
}

func (d Decision) Allowed() bool {
	return d.Err == nil
}

// Status is the HTTP status of a denial, 200 when allowed.
func (d Decision) Status() int {
	if d.Err == nil {
		return 200
	}
	return d.Err.Status
}

// Check is a named predicate. Its function returns nil to allow.
type Check struct {
	Name string
	Fn   func(ctx context.Context, id Identity, p Params) *errs.Error
}

func (c Check) Eval(ctx context.Context, id Identity, p Params) Decision {
	return Decision{Check: c.Name, Err: c.Fn(ctx, id, p)}
}

// Chain is an ordered list of checks.
type Chain struct {
	checks []Check
	log    *zap.Logger
}

func NewChain(log *zap.Logger, checks ...Check) Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return Chain{checks: checks, log: log}
}

func (c Chain) Names() []string {
	names := make([]string, len(c.checks))
	for i, ch := range c.checks {
		names[i] = ch.Name
	}
	return names
}

// Run evaluates the checks in order. No check after a denial runs.
func (c Chain) Run(ctx context.Context, id Identity, p Params) Decision {
	if id.UserID == "" {
		return Decision{Check: "authenticated", Err: errs.Unauthorized("Unauthorized")}
	}

	for _, ch := range c.checks {
		if err := ctx.Err(); err != nil {
			return Decision{Check: ch.Name, Err: errs.Dependency("Request cancelled", err)}
		}

		d := ch.Eval(ctx, id, p)
		if !d.Allowed() {
			c.log.Debug("request denied",
				zap.String("check", d.Check),
				zap.Int("status", d.Err.Status),
				zap.String("user_id", id.UserID),
				zap.String("reason", d.Err.Message),
			)
			return d
		}
	}
	return Decision{}
}
