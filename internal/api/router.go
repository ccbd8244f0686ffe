package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/store"
	"github.com/crestline/ticketdesk/internal/ws"
)

var startTime = time.Now()

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Tickets     *store.TicketStore
	Users       *store.UserStore
	Projects    *store.ProjectStore
	Clients     *store.ClientStore
	Sessions    *store.SessionStore
	Attachments *store.AttachmentStore
	Hub         *ws.Hub

	AllowedOrigins       []string
	RecordingMaxDuration time.Duration
	CommentPageSize      int
}

// NewRouter builds the HTTP API. Everything under /api except auth
// requires a valid session.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := deps.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(chimiddleware.SetHeader("Content-Type", "application/json"))

	r.Get("/health", handleHealth)
	r.Get("/", handleRoot)
	r.Handle("/ws", &ws.Handler{Hub: deps.Hub})

	authHandler := &AuthHandler{Users: deps.Users, Sessions: deps.Sessions}
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/logout", authHandler.Logout)

	ticketHandler := &TicketHandler{
		Tickets:         deps.Tickets,
		Users:           deps.Users,
		Projects:        deps.Projects,
		Hub:             deps.Hub,
		CommentPageSize: deps.CommentPageSize,
	}
	userHandler := &UserHandler{Users: deps.Users, Hub: deps.Hub}
	projectHandler := &ProjectHandler{Projects: deps.Projects, Hub: deps.Hub}
	clientHandler := &ClientHandler{Clients: deps.Clients}
	attachmentHandler := &AttachmentHandler{
		Attachments:          deps.Attachments,
		Tickets:              deps.Tickets,
		RecordingMaxDuration: deps.RecordingMaxDuration,
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(deps.Sessions))

		r.Get("/api/auth/me", authHandler.Me)

		r.Get("/api/tickets", ticketHandler.List)
		r.Post("/api/tickets", ticketHandler.Create)
		r.Post("/api/tickets/bulk-delete", ticketHandler.BulkDelete)
		r.Post("/api/tickets/bulk-priority", ticketHandler.BulkUpdatePriority)
		r.Get("/api/tickets/{id}", ticketHandler.Get)
		r.Put("/api/tickets/{id}", ticketHandler.Update)
		r.Delete("/api/tickets/{id}", ticketHandler.Delete)

		r.Get("/api/tickets/{id}/subtasks", ticketHandler.ListSubtasks)
		r.Post("/api/tickets/{id}/subtasks", ticketHandler.CreateSubtask)
		r.Patch("/api/subtasks/{id}", ticketHandler.SetSubtaskDone)
		r.Delete("/api/subtasks/{id}", ticketHandler.DeleteSubtask)

		r.Get("/api/tickets/{id}/comments", ticketHandler.ListComments)
		r.Post("/api/tickets/{id}/comments", ticketHandler.CreateComment)

		r.Get("/api/tickets/{id}/attachments", attachmentHandler.ListByTicket)
		r.Post("/api/tickets/{id}/attachments", attachmentHandler.Create)
		r.Delete("/api/attachments/{id}", attachmentHandler.Delete)

		r.Get("/api/users", userHandler.List)
		r.Post("/api/users", userHandler.Create)
		r.Post("/api/users/bulk-delete", userHandler.BulkDelete)
		r.Put("/api/users/{id}", userHandler.Update)

		r.Get("/api/projects", projectHandler.List)
		r.Post("/api/projects", projectHandler.Create)
		r.Get("/api/projects/{id}", projectHandler.Get)
		r.Put("/api/projects/{id}", projectHandler.Update)
		r.Delete("/api/projects/{id}", projectHandler.Delete)
		r.Post("/api/projects/{id}/members", projectHandler.AddMembers)

		r.Get("/api/clients", clientHandler.List)
		r.Post("/api/clients", clientHandler.Create)
		r.Post("/api/clients/bulk-delete", clientHandler.BulkDelete)
		r.Get("/api/clients/{id}", clientHandler.Get)
		r.Put("/api/clients/{id}", clientHandler.Update)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Version:   getVersion(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{
		"name":   "TicketDesk",
		"health": "/health",
	})
}

func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}
