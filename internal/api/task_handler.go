package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mwhitney/taskloop-api/internal/api/shared"
	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
	"github.com/mwhitney/taskloop-api/internal/service"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        domain.Priority(req.Priority),
		DueDate:         req.DueDate,
		RecurrenceRule:  req.RecurrenceRule,
		ReminderEnabled: req.ReminderEnabled,
		Tags:            req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task, req.Tags))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tags, err := h.taskService.TaskTags(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task, tags))
}

// List handles GET /tasks with optional filters from the query string.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filter, err := parseTaskListFilter(r)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Debug("rejected invalid task list filter", "error", err.Error())
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task, nil))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: responses,
		Count: len(responses),
	})
}

// Update handles PUT /tasks/{id}. Updates are partial: absent fields are
// left unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         req.DueDate,
		ClearDueDate:    req.ClearDueDate,
		RecurrenceRule:  req.RecurrenceRule,
		ReminderEnabled: req.ReminderEnabled,
		Tags:            req.Tags,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, input)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tags, err := h.taskService.TaskTags(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task, tags))
}

// Toggle handles POST /tasks/{id}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.ToggleCompletion(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task, nil))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTaskListFilter builds a store filter from the request query string.
// Supported parameters: priority, due_before (RFC 3339), recurring
// (true/false), search, sort (priority|due_date|title|created_at), order
// (asc|desc), skip, limit.
func parseTaskListFilter(r *http.Request) (store.TaskListFilter, error) {
	var filter store.TaskListFilter
	query := r.URL.Query()

	if p := query.Get("priority"); p != "" {
		priority := domain.Priority(p)
		if !priority.Valid() {
			return filter, errInvalidQueryParam("priority")
		}
		filter.Priority = priority
	}

	if d := query.Get("due_before"); d != "" {
		due, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return filter, errInvalidQueryParam("due_before")
		}
		filter.DueBefore = &due
	}

	if rec := query.Get("recurring"); rec != "" {
		recurring, err := strconv.ParseBool(rec)
		if err != nil {
			return filter, errInvalidQueryParam("recurring")
		}
		filter.Recurring = &recurring
	}

	filter.Search = query.Get("search")
	filter.SortField = query.Get("sort")
	filter.Descending = query.Get("order") == "desc"

	if s := query.Get("skip"); s != "" {
		skip, err := strconv.Atoi(s)
		if err != nil || skip < 0 {
			return filter, errInvalidQueryParam("skip")
		}
		filter.Offset = skip
	}

	if l := query.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return filter, errInvalidQueryParam("limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}

type queryParamError string

func (e queryParamError) Error() string {
	return "Invalid query parameter: " + string(e)
}

func errInvalidQueryParam(name string) error {
	return queryParamError(name)
}
