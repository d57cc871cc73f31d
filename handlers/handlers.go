// handlers/handlers.go - HTTP surface and the authorization route adapter
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/middleware"
	"teamwork/services"
	"teamwork/store"
	"teamwork/token"
	"teamwork/utils"
)

const defaultRequestTimeout = 10 * time.Second

type Handler struct {
	store   store.Store
	svc     *services.Services
	authz   *authz.Engine
	issuer  *token.Issuer
	timeout time.Duration
	log     *zap.Logger
}

func New(s store.Store, svc *services.Services, engine *authz.Engine, issuer *token.Issuer, timeout time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		store:   s,
		svc:     svc,
		authz:   engine,
		issuer:  issuer,
		timeout: timeout,
		log:     log.Named("http"),
	}
}

// action is a handler body that runs after its chain allowed the request.
type action func(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error

// route runs chain against the caller and the request's entity ids, then
// calls fn. The chain decision is rendered as-is on denial.
func (h *Handler) route(chain authz.Chain, fn action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		defer cancel()

		id := authz.Identity{UserID: userID}
		p, err := requestParams(c)
		if err != nil {
			return utils.JSONError(c, err)
		}
		if d := chain.Run(ctx, id, p); !d.Allowed() {
			return utils.JSONError(c, d.Err)
		}
		return fn(ctx, c, id, p)
	}
}

// idBody picks entity ids out of a JSON body.
type idBody struct {
	TeamID         string `json:"teamId"`
	ListID         string `json:"listId"`
	TaskID         string `json:"taskId"`
	AnnouncementID string `json:"announcementId"`
	ChatID         string `json:"chatId"`
	Assignee       string `json:"assignee"`
}

// requestParams collects ids from the body, then the query string, then the
// path. Later sources win. The assignee is only read from the body, which is
// also where the handlers take it from.
func requestParams(c *fiber.Ctx) (authz.Params, error) {
	var b idBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&b); err != nil {
			return authz.Params{}, errs.Validation("Invalid request body")
		}
	}

	p := authz.Params{
		TeamID:         b.TeamID,
		ListID:         b.ListID,
		TaskID:         b.TaskID,
		AnnouncementID: b.AnnouncementID,
		ChatID:         b.ChatID,
		Assignee:       b.Assignee,
	}

	pick := func(dst *string, key string) {
		if v := c.Query(key); v != "" {
			*dst = v
		}
		if v := c.Params(key); v != "" {
			*dst = v
		}
	}
	pick(&p.TeamID, "teamId")
	pick(&p.ListID, "listId")
	pick(&p.TaskID, "taskId")
	pick(&p.AnnouncementID, "announcementId")
	pick(&p.ChatID, "chatId")
	return p, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errs.Validation("Invalid request body")
	}
	return nil
}

// Mount registers every route on app. limiters may be nil.
func (h *Handler) Mount(app *fiber.App, limiters *middleware.Limiters) {
	app.Get("/health", h.Health)

	auth := middleware.Auth(h.issuer)
	e := h.authz
	signedIn := e.Chain()

	api := app.Group("/api")

	// ================== USERS ==================
	authLimit := func(c *fiber.Ctx) error { return c.Next() }
	if limiters != nil {
		authLimit = limiters.Auth()
	}

	users := api.Group("/users")
	users.Post("/register", authLimit, h.Register)
	users.Post("/login", authLimit, h.Login)
	users.Get("/me", auth, h.route(signedIn, h.Me))
	users.Get("/search", auth, h.route(signedIn, h.SearchUsers))

	// ================== TEAMS ==================
	teams := api.Group("/teams", auth)
	teams.Post("/", h.route(signedIn, h.CreateTeam))
	teams.Get("/", h.route(signedIn, h.FetchAllTeams))
	teams.Get("/:teamId", h.route(e.Chain(e.IsMember()), h.FetchTeam))
	teams.Put("/:teamId", h.route(e.Chain(e.IsMember(), e.IsAdmin()), h.RenameTeam))
	teams.Delete("/:teamId", h.route(e.Chain(e.IsMember(), e.IsAdmin()), h.DeleteTeam))
	teams.Put("/:teamId/leave", h.route(e.Chain(e.IsMember()), h.LeaveTeam))
	teams.Post("/:teamId/members", h.route(e.Chain(e.IsMember(), e.IsAdmin()), h.AddMember))
	teams.Delete("/:teamId/members/:memberId", h.route(e.Chain(e.IsMember(), e.IsAdmin()), h.RemoveMember))

	teams.Post("/:teamId/announcements", h.route(e.Chain(e.IsMember(), e.IsAdmin()), h.CreateAnnouncement))
	teams.Get("/:teamId/announcements", h.route(e.Chain(e.IsMember()), h.FetchAllAnnouncements))
	teams.Get("/:teamId/announcements/:announcementId",
		h.route(e.Chain(e.IsMember(), e.CheckAnnouncementOwnership()), h.FetchAnnouncement))
	teams.Put("/:teamId/announcements/:announcementId",
		h.route(e.Chain(e.IsMember(), e.IsAdmin(), e.CheckAnnouncementOwnership()), h.EditAnnouncement))
	teams.Delete("/:teamId/announcements/:announcementId",
		h.route(e.Chain(e.IsMember(), e.IsAdmin(), e.CheckAnnouncementOwnership()), h.DeleteAnnouncement))

	teams.Post("/:teamId/tasks",
		h.route(e.Chain(e.IsMember(), e.ValidateTeamTask(), e.ValidateAssigneeMembership()), h.CreateTeamTask))
	teams.Post("/:teamId/lists", h.route(e.Chain(e.IsMember(), e.ValidateTeamList()), h.CreateTeamList))
	teams.Get("/:teamId/lists", h.route(e.Chain(e.IsMember()), h.FetchTeamLists))

	// ================== TASKS & LISTS ==================
	tasks := api.Group("/tasks", auth)
	tasks.Post("/", h.route(e.Chain(e.CheckListOwnership()), h.CreateTask))
	tasks.Get("/assigned", h.route(signedIn, h.FetchAssignedTasks))
	tasks.Get("/:taskId", h.route(e.Chain(e.ValidateTaskAccess()), h.FetchTask))
	tasks.Put("/:taskId", h.route(e.Chain(e.ValidateTaskOwner(), e.ValidateAssignee()), h.EditTask))
	tasks.Delete("/:taskId", h.route(e.Chain(e.ValidateTaskOwner()), h.DeleteTask))

	lists := api.Group("/lists", auth)
	lists.Post("/", h.route(signedIn, h.CreateList))
	lists.Get("/", h.route(signedIn, h.FetchUserLists))
	lists.Put("/:listId", h.route(e.Chain(e.ValidateListOwner()), h.EditListTitle))
	lists.Delete("/:listId", h.route(e.Chain(e.ValidateListOwner()), h.DeleteList))

	// ================== CHATS ==================
	chats := api.Group("/chats", auth)
	chats.Get("/", h.route(signedIn, h.FetchChatNames))
	chats.Get("/:chatId/messages", h.route(e.Chain(e.IsChatMember()), h.FetchChat))
	chats.Post("/:chatId/messages", h.route(e.Chain(e.IsChatMember()), h.SendMessage))

	app.Get("/ws/chats/:chatId", requireUpgrade, auth, h.ChatStreamGuard, h.ChatStream())
}

// Health reports store reachability.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"timestamp": time.Now().Unix(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
