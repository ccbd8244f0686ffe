package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/crestline/ticketdesk/internal/api"
	"github.com/crestline/ticketdesk/internal/automigrate"
	"github.com/crestline/ticketdesk/internal/config"
	"github.com/crestline/ticketdesk/internal/store"
	"github.com/crestline/ticketdesk/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := automigrate.Run(db, "migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	sessions := store.NewSessionStore(db, cfg.Session.TTL)
	go reapExpiredSessions(sessions)

	router := api.NewRouter(api.Deps{
		Tickets:              store.NewTicketStore(db),
		Users:                store.NewUserStore(db),
		Projects:             store.NewProjectStore(db),
		Clients:              store.NewClientStore(db),
		Sessions:             sessions,
		Attachments:          store.NewAttachmentStore(db),
		Hub:                  hub,
		AllowedOrigins:       cfg.AllowedOrigins,
		RecordingMaxDuration: cfg.Recording.MaxDuration,
		CommentPageSize:      cfg.CommentPageSize,
	})

	log.Printf("🎫 TicketDesk starting on port %s (%s)", cfg.Port, cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func reapExpiredSessions(sessions *store.SessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		deleted, err := sessions.DeleteExpired(ctx)
		cancel()
		if err != nil {
			log.Printf("warning: session cleanup failed: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("session cleanup removed %d expired sessions", deleted)
		}
	}
}
