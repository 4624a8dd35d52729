package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/donelist/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.SignUp)
	r.POST("/api/v1/auth/signin", handlers.Auth.SignIn)
	r.POST("/api/v1/auth/signout", authMiddleware(handlers.Auth.SignOut))
	r.GET("/api/v1/auth/session", authMiddleware(handlers.Auth.Session))

	// Task routes, all behind the session gate
	r.GET("/api/v1/tasks/active", authMiddleware(handlers.Task.ListActive))
	r.GET("/api/v1/tasks/completed", authMiddleware(handlers.Task.ListCompleted))
	r.GET("/api/v1/tasks/overdue", authMiddleware(handlers.Task.ListOverdue))
	r.GET("/api/v1/tasks/counts", authMiddleware(handlers.Task.Counts))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.AddTask))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.CompleteTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.RemoveTask))

	return r
}
