package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/listview"
	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/notice"
	"github.com/crestline/ticketdesk/internal/roles"
	"github.com/crestline/ticketdesk/internal/store"
	"github.com/crestline/ticketdesk/internal/ws"
)

// TicketHandler manages ticket endpoints.
type TicketHandler struct {
	Tickets         *store.TicketStore
	Users           *store.UserStore
	Projects        *store.ProjectStore
	Hub             *ws.Hub
	CommentPageSize int
}

type ticketWriteRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	ProjectID   *string    `json:"project_id,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	ClientID    *string    `json:"client_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type ticketListResponse struct {
	Tickets []store.Ticket                 `json:"tickets"`
	Total   int                            `json:"total"`
	Groups  []listview.Group[store.Ticket] `json:"groups,omitempty"`
	GroupBy string                         `json:"group_by,omitempty"`
	Filters listview.FilterState           `json:"filters"`
	Sort    listview.SortState             `json:"sort"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type bulkDeleteResponse struct {
	DeletedCount int               `json:"deleted_count"`
	Failed       []string          `json:"failed"`
	Errors       map[string]string `json:"errors"`
	Notice       notice.Notice     `json:"notice"`
}

type bulkPriorityRequest struct {
	IDs      []string `json:"ids"`
	Priority string   `json:"priority"`
}

type bulkPriorityResponse struct {
	UpdatedCount int           `json:"updated_count"`
	Notice       notice.Notice `json:"notice"`
}

// List handles GET /api/tickets. Filters use the "All" sentinel and the
// empty string interchangeably; group_by selects an optional grouping.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))
	q := r.URL.Query()

	filter := store.TicketFilter{
		Status:   models.TicketStatus(listview.NormalizeFilterValue(q.Get("status"))),
		Priority: models.TicketPriority(listview.NormalizeFilterValue(q.Get("priority"))),
	}
	if v := listview.NormalizeFilterValue(q.Get("project_id")); v != "" {
		id := models.ProjectID(v)
		filter.ProjectID = &id
	}
	if v := listview.NormalizeFilterValue(q.Get("assignee_id")); v != "" {
		id := models.UserID(v)
		filter.AssigneeID = &id
	}

	sort := listview.SortState{}
	sort.Set(strings.TrimSpace(q.Get("sort")), models.NormalizeSortDirection(q.Get("direction")))
	filter.SortColumn = sort.Column
	filter.SortDesc = sort.Direction == models.SortDesc

	if filter.Status != "" && !filter.Status.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid status filter"})
		return
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid priority filter"})
		return
	}

	tickets, err := h.Tickets.List(r.Context(), filter)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	resp := ticketListResponse{
		Tickets: tickets,
		Total:   len(tickets),
		Filters: listview.FilterState{},
		Sort:    sort,
	}
	resp.Filters.Set("status", string(filter.Status))
	resp.Filters.Set("priority", string(filter.Priority))

	if groupBy := strings.TrimSpace(q.Get("group_by")); groupBy != "" {
		groups, err := h.groupTickets(r, tr, tickets, groupBy)
		if err != nil {
			sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		resp.Groups = groups
		resp.GroupBy = groupBy
	}

	sendJSON(w, http.StatusOK, resp)
}

// groupTickets buckets an already-filtered ticket list. Assignee and
// project buckets resolve display names from the stores up front so the
// group configs stay pure.
func (h *TicketHandler) groupTickets(r *http.Request, tr i18n.Translator, tickets []store.Ticket, groupBy string) ([]listview.Group[store.Ticket], error) {
	const unassignedKey = "none"

	userNames := map[string]string{}
	projectNames := map[string]string{}
	switch groupBy {
	case "assignee":
		users, err := h.Users.List(r.Context(), store.UserFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assignees")
		}
		for _, u := range users {
			userNames[u.ID.String()] = u.Name
		}
	case "project":
		projects, err := h.Projects.List(r.Context(), store.ProjectFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve projects")
		}
		for _, p := range projects {
			projectNames[p.ID.String()] = p.Name
		}
	}

	grouper := listview.NewGrouper(tr.Tag(),
		listview.GroupConfig[store.Ticket]{
			Key:      "status",
			GroupKey: func(t store.Ticket) string { return string(t.Status) },
			SortOrder: map[string]int{
				string(models.TicketStatusOpen):       0,
				string(models.TicketStatusInProgress): 1,
				string(models.TicketStatusReview):     2,
				string(models.TicketStatusResolved):   3,
				string(models.TicketStatusClosed):     4,
			},
		},
		listview.GroupConfig[store.Ticket]{
			Key:      "priority",
			GroupKey: func(t store.Ticket) string { return string(t.Priority) },
			SortOrder: map[string]int{
				string(models.TicketPriorityUrgent): 0,
				string(models.TicketPriorityHigh):   1,
				string(models.TicketPriorityMedium): 2,
				string(models.TicketPriorityLow):    3,
			},
		},
		listview.GroupConfig[store.Ticket]{
			Key: "assignee",
			GroupKey: func(t store.Ticket) string {
				if t.AssigneeID == nil {
					return unassignedKey
				}
				return t.AssigneeID.String()
			},
			Label: func(key string) string {
				if key == unassignedKey {
					return "Unassigned"
				}
				if name, ok := userNames[key]; ok {
					return name
				}
				return key
			},
		},
		listview.GroupConfig[store.Ticket]{
			Key: "project",
			GroupKey: func(t store.Ticket) string {
				if t.ProjectID == nil {
					return unassignedKey
				}
				return t.ProjectID.String()
			},
			Label: func(key string) string {
				if key == unassignedKey {
					return "No project"
				}
				if name, ok := projectNames[key]; ok {
					return name
				}
				return key
			},
		},
		listview.GroupConfig[store.Ticket]{
			Key:      "due_month",
			GroupKey: func(t store.Ticket) string { return listview.DueMonthKey(t.DueDate) },
			Label: func(key string) string {
				return listview.DueMonthLabel(key, tr.T(i18n.KeyNoDueDate))
			},
		},
	)

	groups := grouper.Group(tickets, groupBy)
	if len(groups) == 0 && len(tickets) > 0 {
		return nil, fmt.Errorf("unknown group_by value: %s", groupBy)
	}
	return groups, nil
}

// Get handles GET /api/tickets/{id}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := models.TicketID(chi.URLParam(r, "id"))
	ticket, err := h.Tickets.GetByID(r.Context(), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	subtasks, err := h.Tickets.ListSubtasks(r.Context(), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	comments, err := h.Tickets.ListComments(r.Context(), id, h.CommentPageSize)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"ticket":   ticket,
		"subtasks": subtasks,
		"comments": comments,
	})
}

// Create handles POST /api/tickets.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ticketWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input, errMsg := ticketInputFromRequest(req)
	if errMsg != "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: errMsg})
		return
	}

	ticket, err := h.Tickets.Create(r.Context(), store.CreateTicketInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}

	h.Hub.Publish(ws.MessageTicketCreated, ticket)
	sendJSON(w, http.StatusCreated, ticket)
}

// Update handles PUT /api/tickets/{id}. Fields are replaced wholesale.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := models.TicketID(chi.URLParam(r, "id"))

	var req ticketWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input, errMsg := ticketInputFromRequest(req)
	if errMsg != "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: errMsg})
		return
	}

	ticket, err := h.Tickets.Update(r.Context(), id, store.UpdateTicketInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}

	h.Hub.PublishTopic("ticket:"+string(id), ws.MessageTicketUpdated, ticket)
	sendJSON(w, http.StatusOK, ticket)
}

// Delete handles DELETE /api/tickets/{id}.
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	id := models.TicketID(chi.URLParam(r, "id"))
	if err := h.Tickets.Delete(r.Context(), id); err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// BulkDelete handles POST /api/tickets/bulk-delete. Blank IDs are
// stripped before the store call; a selection that strips to nothing is
// rejected without touching the database.
func (h *TicketHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))

	if !requireTicketManager(w, r) {
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ids := make([]models.TicketID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			ids = append(ids, models.TicketID(trimmed))
		}
	}
	if len(ids) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: tr.T(i18n.KeyNoValidSelection)})
		return
	}

	outcome, err := h.Tickets.BulkDelete(r.Context(), ids)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	resp := bulkDeleteResponse{
		DeletedCount: outcome.DeletedCount,
		Failed:       outcome.Failed,
		Errors:       outcome.Errors,
		Notice:       classifyBulkDelete(tr, outcome),
	}

	h.Hub.Publish(ws.MessageTicketsBulkDeleted, resp)
	sendJSON(w, http.StatusOK, resp)
}

// BulkUpdatePriority handles POST /api/tickets/bulk-priority. Unlike
// bulk delete there is no per-item outcome; the count is all callers get.
func (h *TicketHandler) BulkUpdatePriority(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))

	if !requireTicketManager(w, r) {
		return
	}

	var req bulkPriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	priority := models.NormalizeTicketPriority(req.Priority)
	if !priority.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid priority"})
		return
	}
	if len(req.IDs) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: tr.T(i18n.KeyNoValidSelection)})
		return
	}

	ids := make([]models.TicketID, len(req.IDs))
	for i, raw := range req.IDs {
		ids[i] = models.TicketID(raw)
	}

	count, err := h.Tickets.BulkUpdatePriority(r.Context(), ids, priority)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	resp := bulkPriorityResponse{
		UpdatedCount: count,
		Notice: notice.Notice{
			Level:   notice.LevelSuccess,
			Message: tr.T(i18n.KeyBulkUpdateSuccess, count),
		},
	}

	h.Hub.Publish(ws.MessageTicketPriorityChanged, resp)
	sendJSON(w, http.StatusOK, resp)
}

// classifyBulkDelete maps a per-item outcome to the notice shown to the
// user: full success, nothing deleted, or a partial result.
func classifyBulkDelete(tr i18n.Translator, outcome store.BulkOutcome) notice.Notice {
	firstReason := ""
	for _, id := range outcome.Failed {
		if reason, ok := outcome.Errors[id]; ok && reason != "" {
			firstReason = reason
			break
		}
	}
	if firstReason == "" {
		firstReason = tr.T(i18n.KeyRequestFailed)
	}

	switch {
	case len(outcome.Failed) == 0:
		return notice.Notice{
			Level:   notice.LevelSuccess,
			Message: tr.T(i18n.KeyBulkDeleteSuccess, outcome.DeletedCount),
		}
	case outcome.DeletedCount == 0:
		return notice.Notice{
			Level:   notice.LevelError,
			Message: tr.T(i18n.KeyBulkDeleteFailed, firstReason),
		}
	default:
		return notice.Notice{
			Level:   notice.LevelWarning,
			Message: tr.T(i18n.KeyBulkDeletePartial, outcome.DeletedCount, len(outcome.Failed), firstReason),
		}
	}
}

type ticketInput struct {
	Title       string
	Description *string
	Status      models.TicketStatus
	Priority    models.TicketPriority
	ProjectID   *models.ProjectID
	AssigneeID  *models.UserID
	ClientID    *models.ClientID
	DueDate     *time.Time
}

func ticketInputFromRequest(req ticketWriteRequest) (ticketInput, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ticketInput{}, "title is required"
	}

	status := models.NormalizeTicketStatus(req.Status)
	if status == "" {
		status = models.TicketStatusOpen
	}
	if !status.IsValid() {
		return ticketInput{}, "invalid status"
	}
	priority := models.NormalizeTicketPriority(req.Priority)
	if priority == "" {
		priority = models.TicketPriorityMedium
	}
	if !priority.IsValid() {
		return ticketInput{}, "invalid priority"
	}

	input := ticketInput{
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		id := models.ProjectID(*req.ProjectID)
		input.ProjectID = &id
	}
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		id := models.UserID(*req.AssigneeID)
		input.AssigneeID = &id
	}
	if req.ClientID != nil && *req.ClientID != "" {
		id := models.ClientID(*req.ClientID)
		input.ClientID = &id
	}
	return input, ""
}

// requireTicketManager rejects callers whose role cannot run destructive
// ticket operations.
func requireTicketManager(w http.ResponseWriter, r *http.Request) bool {
	flags := roles.Derive(middleware.RoleFromContext(r.Context()))
	if !flags.CanManageTickets() {
		sendJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return false
	}
	return true
}
