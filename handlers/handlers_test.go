package handlers

import (
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTP API", func() {
	var srv *testServer

	BeforeEach(func() {
		srv = newTestServer()
	})

	AfterEach(func() {
		srv.Close()
	})

	Describe("Health", func() {
		Specify("reports a reachable store", func() {
			r := srv.do(http.MethodGet, "/health", "", nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Body["status"]).To(Equal("healthy"))
		})
	})

	Describe("Users", func() {
		Specify("register, login and me", func() {
			alice := srv.register("alice")

			r := srv.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": "alice", "password": "password"})
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("user")["id"]).To(Equal(alice.ID))

			r = srv.do(http.MethodGet, "/api/users/me", alice.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("user")["username"]).To(Equal("alice"))
			Expect(r.Object("user")).NotTo(HaveKey("password"))
		})
		Specify("sad path - wrong password", func() {
			srv.register("alice")
			r := srv.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": "alice", "password": "nope"})
			Expect(r.Status).To(Equal(http.StatusBadRequest))
			Expect(r.Error()).To(Equal("Incorrect username or password"))
		})
		Specify("sad path - no token", func() {
			r := srv.do(http.MethodGet, "/api/users/me", "", nil)
			Expect(r.Status).To(Equal(http.StatusUnauthorized))
			Expect(r.Body["success"]).To(Equal(false))
		})
		Specify("search excludes the caller", func() {
			alice := srv.register("alice")
			srv.register("alicia")

			r := srv.do(http.MethodGet, "/api/users/search?q=ali", alice.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Items("users")).To(HaveLen(1))
		})
	})

	Describe("Teams", func() {
		var admin, member, outsider user
		var teamID string

		BeforeEach(func() {
			admin = srv.register("admin")
			member = srv.register("member")
			outsider = srv.register("outsider")
			teamID, _ = srv.createTeam(admin, "core", member)
		})

		Specify("members can fetch the team", func() {
			r := srv.do(http.MethodGet, "/api/teams/"+teamID, member.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("team")["members"]).To(HaveLen(2))
		})
		Specify("sad path - outsider", func() {
			r := srv.do(http.MethodGet, "/api/teams/"+teamID, outsider.Token, nil)
			Expect(r.Status).To(Equal(http.StatusForbidden))
			Expect(r.Error()).To(Equal("You are not a member of this team"))
		})
		Specify("sad path - member renames", func() {
			r := srv.do(http.MethodPut, "/api/teams/"+teamID, member.Token, map[string]string{"name": "mine"})
			Expect(r.Status).To(Equal(http.StatusForbidden))
		})
		Specify("admin adds and removes members", func() {
			r := srv.do(http.MethodPost, "/api/teams/"+teamID+"/members", admin.Token, map[string]string{"memberId": outsider.ID})
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("team")["members"]).To(HaveLen(3))

			r = srv.do(http.MethodDelete, "/api/teams/"+teamID+"/members/"+outsider.ID, admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("team")["members"]).To(HaveLen(2))
		})
		Specify("admin leaves after handing over", func() {
			r := srv.do(http.MethodPut, "/api/teams/"+teamID+"/leave", admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusBadRequest))
			Expect(r.Error()).To(Equal("Please assign a new admin before leaving the team"))

			r = srv.do(http.MethodPut, "/api/teams/"+teamID+"/leave", admin.Token, map[string]string{"newAdminId": member.ID})
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Body["admin"]).To(Equal(member.ID))

			r = srv.do(http.MethodGet, "/api/teams/"+teamID, admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusForbidden))
		})
		Specify("announcements are scoped to their team", func() {
			r := srv.do(http.MethodPost, "/api/teams/"+teamID+"/announcements", admin.Token, map[string]string{"content": "ship it"})
			Expect(r.Status).To(Equal(http.StatusCreated))
			annID := r.Object("announcement")["id"].(string)
			Expect(r.Object("announcement")["title"]).To(Equal("No title"))

			r = srv.do(http.MethodGet, "/api/teams/"+teamID+"/announcements/"+annID, member.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))

			otherTeam, _ := srv.createTeam(member, "other")
			r = srv.do(http.MethodGet, "/api/teams/"+otherTeam+"/announcements/"+annID, member.Token, nil)
			Expect(r.Status).To(Equal(http.StatusNotFound))

			r = srv.do(http.MethodPost, "/api/teams/"+teamID+"/announcements", member.Token, map[string]string{"content": "x"})
			Expect(r.Status).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Lists with multiple owners", func() {
		var admin, member user
		var teamID, listID string

		BeforeEach(func() {
			admin = srv.register("admin")
			member = srv.register("member")
			teamID, _ = srv.createTeam(admin, "core", member)

			r := srv.do(http.MethodPost, "/api/teams/"+teamID+"/lists", member.Token, map[string]string{"title": "sprint"})
			Expect(r.Status).To(Equal(http.StatusCreated))
			listID = r.Object("list")["id"].(string)

			r = srv.do(http.MethodPost, "/api/teams/"+teamID+"/tasks?addToList=true", member.Token, map[string]string{
				"description": "draft",
				"status":      "ongoing",
				"listId":      listID,
			})
			Expect(r.Status).To(Equal(http.StatusCreated), r.Error())

			r = srv.do(http.MethodPost, "/api/teams/"+teamID+"/tasks?addToList=true", admin.Token, map[string]string{
				"description": "review",
				"status":      "todo",
				"listId":      listID,
				"assignee":    member.ID,
			})
			Expect(r.Status).To(Equal(http.StatusCreated), r.Error())
		})

		Specify("the creator cannot delete a list others have tasks in", func() {
			r := srv.do(http.MethodDelete, "/api/lists/"+listID, member.Token, nil)
			Expect(r.Status).To(Equal(http.StatusUnauthorized))
			Expect(r.Error()).To(Equal("Failed to modify. List has multiple owners"))
		})
		Specify("the team admin deletes the list and its tasks", func() {
			r := srv.do(http.MethodDelete, "/api/lists/"+listID, admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Body["deletedTasks"]).To(BeNumerically("==", 2))

			r = srv.do(http.MethodGet, "/api/teams/"+teamID+"/lists", member.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			lists := r.Items("lists")
			Expect(lists).To(HaveLen(1))
			Expect(lists[0].(map[string]interface{})["virtual"]).To(Equal(true))
			Expect(lists[0].(map[string]interface{})["tasks"]).To(BeEmpty())
		})
	})

	Describe("Team task reassignment", func() {
		var admin, member, outsider user
		var taskID string

		BeforeEach(func() {
			admin = srv.register("admin")
			member = srv.register("member")
			outsider = srv.register("outsider")
			teamID, _ := srv.createTeam(admin, "core", member)

			r := srv.do(http.MethodPost, "/api/teams/"+teamID+"/tasks", admin.Token, map[string]string{"description": "ship", "status": "todo"})
			Expect(r.Status).To(Equal(http.StatusCreated), r.Error())
			taskID = r.Object("task")["id"].(string)
		})

		assigneeOf := func() string {
			r := srv.do(http.MethodGet, "/api/tasks/"+taskID, admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK), r.Error())
			return r.Object("task")["assignee"].(string)
		}

		Specify("a member can take over the task", func() {
			r := srv.do(http.MethodPut, "/api/tasks/"+taskID, admin.Token, map[string]string{"assignee": member.ID})
			Expect(r.Status).To(Equal(http.StatusOK), r.Error())
			Expect(assigneeOf()).To(Equal(member.ID))
		})
		Specify("sad path - outsider in the body", func() {
			r := srv.do(http.MethodPut, "/api/tasks/"+taskID, admin.Token, map[string]string{"assignee": outsider.ID})
			Expect(r.Status).To(Equal(http.StatusForbidden))
			Expect(r.Error()).To(Equal("Assignee is not a member of this team"))
			Expect(assigneeOf()).To(Equal(admin.ID))
		})
		Specify("sad path - member in the query does not cover an outsider in the body", func() {
			r := srv.do(http.MethodPut, "/api/tasks/"+taskID+"?assignee="+member.ID, admin.Token, map[string]string{"assignee": outsider.ID})
			Expect(r.Status).To(Equal(http.StatusForbidden))
			Expect(r.Error()).To(Equal("Assignee is not a member of this team"))
			Expect(assigneeOf()).To(Equal(admin.ID))
		})
		Specify("sad path - malformed body is rejected before any check", func() {
			r := srv.doRaw(http.MethodPut, "/api/tasks/"+taskID, admin.Token, `{"assignee":`)
			Expect(r.Status).To(Equal(http.StatusBadRequest))
			Expect(r.Error()).To(Equal("Invalid request body"))
			Expect(assigneeOf()).To(Equal(admin.ID))
		})
	})

	Describe("Personal tasks", func() {
		var alice, bob user

		BeforeEach(func() {
			alice = srv.register("alice")
			bob = srv.register("bob")
		})

		Specify("sad path - archived status", func() {
			r := srv.do(http.MethodPost, "/api/tasks", alice.Token, map[string]string{"description": "x", "status": "archived"})
			Expect(r.Status).To(Equal(http.StatusBadRequest))
			Expect(r.Error()).To(Equal("Invalid task status"))
		})
		Specify("lists include the virtual list", func() {
			r := srv.do(http.MethodPost, "/api/lists", alice.Token, map[string]string{"title": "home"})
			Expect(r.Status).To(Equal(http.StatusCreated))
			listID := r.Object("list")["id"].(string)

			r = srv.do(http.MethodPost, "/api/tasks?addToList=true", alice.Token, map[string]string{"description": "dishes", "status": "todo", "listId": listID})
			Expect(r.Status).To(Equal(http.StatusCreated))
			r = srv.do(http.MethodPost, "/api/tasks", alice.Token, map[string]string{"description": "loose", "status": "ongoing", "dueDate": "2024-03-01"})
			Expect(r.Status).To(Equal(http.StatusCreated))
			Expect(r.Object("task")["dueDate"]).To(Equal("2024-03-01T00:00:00Z"))

			r = srv.do(http.MethodGet, "/api/lists", alice.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			lists := r.Items("lists")
			Expect(lists).To(HaveLen(2))
			virtual := lists[0].(map[string]interface{})
			Expect(virtual["title"]).To(Equal("Tasks"))
			Expect(virtual).NotTo(HaveKey("id"))
			Expect(virtual["tasks"]).To(HaveLen(1))
			Expect(lists[1].(map[string]interface{})["tasks"]).To(HaveLen(1))
		})
		Specify("sad path - someone else's list", func() {
			r := srv.do(http.MethodPost, "/api/lists", alice.Token, map[string]string{"title": "home"})
			listID := r.Object("list")["id"].(string)

			r = srv.do(http.MethodPost, "/api/tasks?addToList=true", bob.Token, map[string]string{"description": "x", "status": "todo", "listId": listID})
			Expect(r.Status).To(Equal(http.StatusNotFound))
			Expect(r.Error()).To(Equal("List not found or not owned by the user"))
		})
		Specify("only the owner edits and deletes", func() {
			r := srv.do(http.MethodPost, "/api/tasks", alice.Token, map[string]string{"description": "x", "status": "todo"})
			taskID := r.Object("task")["id"].(string)

			r = srv.do(http.MethodPut, "/api/tasks/"+taskID, bob.Token, map[string]string{"status": "finished"})
			Expect(r.Status).To(Equal(http.StatusUnauthorized))

			r = srv.do(http.MethodPut, "/api/tasks/"+taskID, alice.Token, map[string]string{"status": "finished"})
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Object("task")["status"]).To(Equal("finished"))

			r = srv.do(http.MethodDelete, "/api/tasks/"+taskID, alice.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))

			r = srv.do(http.MethodGet, "/api/tasks/"+taskID, alice.Token, nil)
			Expect(r.Status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Chat", func() {
		var admin, member, outsider user
		var chatID string

		BeforeEach(func() {
			admin = srv.register("admin")
			member = srv.register("member")
			outsider = srv.register("outsider")
			_, chatID = srv.createTeam(admin, "core", member)
		})

		Specify("members send and read messages", func() {
			r := srv.do(http.MethodPost, "/api/chats/"+chatID+"/messages", member.Token, map[string]string{"content": "hi"})
			Expect(r.Status).To(Equal(http.StatusCreated))

			r = srv.do(http.MethodGet, "/api/chats/"+chatID+"/messages", admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Items("messages")).To(HaveLen(1))

			r = srv.do(http.MethodGet, "/api/chats", admin.Token, nil)
			Expect(r.Status).To(Equal(http.StatusOK))
			Expect(r.Items("chats")).To(HaveLen(1))
		})
		Specify("sad path - outsider", func() {
			r := srv.do(http.MethodPost, "/api/chats/"+chatID+"/messages", outsider.Token, map[string]string{"content": "hi"})
			Expect(r.Status).To(Equal(http.StatusForbidden))
			Expect(r.Error()).To(Equal("You are not a member of this chat"))
		})
		Specify("sad path - websocket without upgrade", func() {
			r := srv.do(http.MethodGet, "/ws/chats/"+chatID+"?token="+member.Token, "", nil)
			Expect(r.Status).To(Equal(http.StatusUpgradeRequired))
		})
	})
})
