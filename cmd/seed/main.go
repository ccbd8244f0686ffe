// Command seed loads a small set of development data: an admin account,
// a couple of teammates, one client with a project, and a handful of
// tickets across the status pipeline.
package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crestline/ticketdesk/internal/config"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/store"
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

	ctx := context.Background()
	users := store.NewUserStore(db)
	clients := store.NewClientStore(db)
	projects := store.NewProjectStore(db)
	tickets := store.NewTicketStore(db)

	admin := mustUser(ctx, users, "admin@ticketdesk.local", "Avery Admin", models.RoleAdmin)
	lead := mustUser(ctx, users, "lead@ticketdesk.local", "Lee Lead", models.RoleEngLead)
	dev := mustUser(ctx, users, "dev@ticketdesk.local", "Devon Developer", models.RoleDeveloper)

	company := "Acme Corp"
	client, err := clients.Create(ctx, store.CreateClientInput{
		Name:    "Acme",
		Email:   "support@acme.example",
		Company: &company,
	})
	if err != nil {
		log.Fatalf("seed client: %v", err)
	}

	project, err := projects.Create(ctx, store.CreateProjectInput{
		Name:     "Website relaunch",
		Status:   models.ProjectStatusActive,
		ClientID: &client.ID,
	})
	if err != nil {
		log.Fatalf("seed project: %v", err)
	}
	if _, err := projects.AddMembers(ctx, project.ID, []models.UserID{lead.ID, dev.ID}); err != nil {
		log.Fatalf("seed project members: %v", err)
	}

	due := time.Now().AddDate(0, 1, 0)
	seedTickets := []store.CreateTicketInput{
		{Title: "Broken checkout flow", Status: models.TicketStatusOpen, Priority: models.TicketPriorityUrgent, ProjectID: &project.ID, AssigneeID: &dev.ID, ClientID: &client.ID, DueDate: &due},
		{Title: "Slow dashboard load", Status: models.TicketStatusInProgress, Priority: models.TicketPriorityHigh, ProjectID: &project.ID, AssigneeID: &dev.ID},
		{Title: "Update footer links", Status: models.TicketStatusReview, Priority: models.TicketPriorityLow, ProjectID: &project.ID, AssigneeID: &lead.ID},
		{Title: "Typo on pricing page", Status: models.TicketStatusResolved, Priority: models.TicketPriorityMedium, ProjectID: &project.ID},
	}
	for _, input := range seedTickets {
		ticket, err := tickets.Create(ctx, input)
		if err != nil {
			log.Fatalf("seed ticket %q: %v", input.Title, err)
		}
		log.Printf("created ticket #%d %s", ticket.Number, ticket.Title)
	}

	log.Printf("seeded %s, %s, %s and %d tickets", admin.Email, lead.Email, dev.Email, len(seedTickets))
	log.Printf("all seed accounts use password %q", seedPassword)
}

const seedPassword = "ticketdesk-dev"

func mustUser(ctx context.Context, users *store.UserStore, email, name string, role models.Role) *store.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("seed password: %v", err)
	}
	user, err := users.Create(ctx, store.CreateUserInput{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Fatalf("seed user %s: %v", email, err)
	}
	return user
}
