// Package models defines domain models for TicketDesk.
//
// Note: The primary model definitions live in the store package alongside their
// data access methods. This package provides identifier types, enumerations,
// and shared types used across packages.
package models

import "strings"

// Identifier types are distinct string types so that a UserID can never be
// passed where a TicketID is expected. They carry no runtime representation
// beyond the underlying string.
type (
	TicketID     string
	UserID       string
	ProjectID    string
	ClientID     string
	CommentID    string
	SubtaskID    string
	AttachmentID string
)

// String returns the raw identifier value.
func (id TicketID) String() string     { return string(id) }
func (id UserID) String() string       { return string(id) }
func (id ProjectID) String() string    { return string(id) }
func (id ClientID) String() string     { return string(id) }
func (id CommentID) String() string    { return string(id) }
func (id SubtaskID) String() string    { return string(id) }
func (id AttachmentID) String() string { return string(id) }

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusReview     TicketStatus = "review"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists all valid statuses in display order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusReview,
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusReview,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// NormalizeTicketStatus lowercases and trims raw input into a TicketStatus.
// The result may be invalid; callers check IsValid.
func NormalizeTicketStatus(raw string) TicketStatus {
	return TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// TicketPriority is the urgency classification of a ticket.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists all valid priorities from least to most urgent.
func TicketPriorities() []TicketPriority {
	return []TicketPriority{
		TicketPriorityLow,
		TicketPriorityMedium,
		TicketPriorityHigh,
		TicketPriorityUrgent,
	}
}

// IsValid reports whether p is a known priority.
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// NormalizeTicketPriority lowercases and trims raw input into a TicketPriority.
func NormalizeTicketPriority(raw string) TicketPriority {
	return TicketPriority(strings.ToLower(strings.TrimSpace(raw)))
}

// Role is a user's role within the workspace.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEngLead   Role = "englead"
	RoleDeveloper Role = "developer"
	RoleClient    Role = "client"
)

// Roles lists all valid roles.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEngLead, RoleDeveloper, RoleClient}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEngLead, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// NormalizeRole lowercases and trims raw input into a Role.
func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusPaused   ProjectStatus = "paused"
	ProjectStatusArchived ProjectStatus = "archived"
)

// IsValid reports whether s is a known project status.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusArchived:
		return true
	}
	return false
}

// SortDirection orders a sorted column or group listing.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
	SortNone SortDirection = ""
)

// NormalizeSortDirection maps raw input, including the long-form spellings
// "ascending" and "descending", onto a SortDirection. Anything else is
// SortNone.
func NormalizeSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	}
	return SortNone
}
