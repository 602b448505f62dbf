package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitney/taskloop-api/internal/api/shared"
	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/service"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// mockTaskService is a function-field mock of service.TaskService.
type mockTaskService struct {
	createFn   func(ctx context.Context, userID uuid.UUID, input service.CreateTaskInput) (*domain.Task, error)
	getFn      func(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)
	listFn     func(ctx context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error)
	updateFn   func(ctx context.Context, userID uuid.UUID, taskID int64, input service.UpdateTaskInput) (*domain.Task, error)
	toggleFn   func(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)
	deleteFn   func(ctx context.Context, userID uuid.UUID, taskID int64) error
	taskTagsFn func(ctx context.Context, userID uuid.UUID, taskID int64) ([]string, error)
}

func (m *mockTaskService) CreateTask(ctx context.Context, userID uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
	return m.createFn(ctx, userID, input)
}

func (m *mockTaskService) GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	return m.getFn(ctx, userID, taskID)
}

func (m *mockTaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
	return m.listFn(ctx, userID, filter)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, input service.UpdateTaskInput) (*domain.Task, error) {
	return m.updateFn(ctx, userID, taskID, input)
}

func (m *mockTaskService) ToggleCompletion(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	return m.toggleFn(ctx, userID, taskID)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error {
	return m.deleteFn(ctx, userID, taskID)
}

func (m *mockTaskService) TaskTags(ctx context.Context, userID uuid.UUID, taskID int64) ([]string, error) {
	return m.taskTagsFn(ctx, userID, taskID)
}

// noTags is a TaskTags stub for tests that don't care about tags.
func noTags(ctx context.Context, userID uuid.UUID, taskID int64) ([]string, error) {
	return nil, nil
}

func sampleTask(userID uuid.UUID) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        42,
		UserID:    userID,
		Title:     "Water the plants",
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// withUserID injects an authenticated user ID the way the auth middleware does.
func withUserID(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withPathID injects a chi route parameter so handlers can resolve {id}
// without a full router.
func withPathID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateTask(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		var gotInput service.CreateTaskInput
		svc := &mockTaskService{
			createFn: func(ctx context.Context, uid uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
				gotInput = input
				task := sampleTask(uid)
				task.Title = input.Title
				return task, nil
			},
		}
		handler := NewTaskHandler(svc)

		body := `{"title":"Water the plants","priority":"high","tags":["home"]}`
		req := withUserID(httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(body)), userID)
		rr := httptest.NewRecorder()

		handler.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Water the plants", gotInput.Title)
		assert.Equal(t, domain.PriorityHigh, gotInput.Priority)
		assert.Equal(t, []string{"home"}, gotInput.Tags)

		var resp TaskResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Water the plants", resp.Title)
		assert.Equal(t, []string{"home"}, resp.Tags)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		svc := &mockTaskService{
			createFn: func(ctx context.Context, uid uuid.UUID, input service.CreateTaskInput) (*domain.Task, error) {
				t.Fatal("service should not be called for invalid input")
				return nil, nil
			},
		}
		handler := NewTaskHandler(svc)

		req := withUserID(httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(`{"priority":"low"}`)), userID)
		rr := httptest.NewRecorder()

		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		handler := NewTaskHandler(&mockTaskService{})

		body := `{"title":"x","priority":"urgent"}`
		req := withUserID(httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(body)), userID)
		rr := httptest.NewRecorder()

		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		handler := NewTaskHandler(&mockTaskService{})

		body := `{"title":"x","bogus":true}`
		req := withUserID(httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(body)), userID)
		rr := httptest.NewRecorder()

		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing user ID", func(t *testing.T) {
		handler := NewTaskHandler(&mockTaskService{})

		req := httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(`{"title":"x"}`))
		rr := httptest.NewRecorder()

		handler.Create(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetTask(t *testing.T) {
	userID := uuid.New()

	t.Run("success with tags", func(t *testing.T) {
		svc := &mockTaskService{
			getFn: func(ctx context.Context, uid uuid.UUID, taskID int64) (*domain.Task, error) {
				assert.Equal(t, int64(42), taskID)
				return sampleTask(uid), nil
			},
			taskTagsFn: func(ctx context.Context, uid uuid.UUID, taskID int64) ([]string, error) {
				return []string{"home", "garden"}, nil
			},
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("GET", "/tasks/42", nil), userID), "42")
		rr := httptest.NewRecorder()

		handler.Get(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp TaskResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, []string{"home", "garden"}, resp.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{
			getFn: func(ctx context.Context, uid uuid.UUID, taskID int64) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("GET", "/tasks/99", nil), userID), "99")
		rr := httptest.NewRecorder()

		handler.Get(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed ID", func(t *testing.T) {
		handler := NewTaskHandler(&mockTaskService{})

		req := withPathID(withUserID(httptest.NewRequest("GET", "/tasks/abc", nil), userID), "abc")
		rr := httptest.NewRecorder()

		handler.Get(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListTasks(t *testing.T) {
	userID := uuid.New()

	t.Run("filters parsed from query string", func(t *testing.T) {
		var gotFilter store.TaskListFilter
		svc := &mockTaskService{
			listFn: func(ctx context.Context, uid uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
				gotFilter = filter
				return []*domain.Task{sampleTask(uid)}, nil
			},
		}
		handler := NewTaskHandler(svc)

		url := "/tasks?priority=high&recurring=true&search=plants&sort=due_date&order=desc&skip=10&limit=5"
		req := withUserID(httptest.NewRequest("GET", url, nil), userID)
		rr := httptest.NewRecorder()

		handler.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.PriorityHigh, gotFilter.Priority)
		require.NotNil(t, gotFilter.Recurring)
		assert.True(t, *gotFilter.Recurring)
		assert.Equal(t, "plants", gotFilter.Search)
		assert.Equal(t, "due_date", gotFilter.SortField)
		assert.True(t, gotFilter.Descending)
		assert.Equal(t, 10, gotFilter.Offset)
		assert.Equal(t, 5, gotFilter.Limit)

		var resp TaskListResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("due_before parsed as RFC 3339", func(t *testing.T) {
		var gotFilter store.TaskListFilter
		svc := &mockTaskService{
			listFn: func(ctx context.Context, uid uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
				gotFilter = filter
				return nil, nil
			},
		}
		handler := NewTaskHandler(svc)

		req := withUserID(httptest.NewRequest("GET", "/tasks?due_before=2025-03-10T12:00:00Z", nil), userID)
		rr := httptest.NewRecorder()

		handler.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotFilter.DueBefore)
		assert.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), gotFilter.DueBefore.UTC())
	})

	t.Run("invalid filter values rejected", func(t *testing.T) {
		handler := NewTaskHandler(&mockTaskService{})

		for _, url := range []string{
			"/tasks?priority=urgent",
			"/tasks?due_before=tomorrow",
			"/tasks?recurring=maybe",
			"/tasks?skip=-1",
			"/tasks?limit=abc",
		} {
			req := withUserID(httptest.NewRequest("GET", url, nil), userID)
			rr := httptest.NewRecorder()

			handler.List(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, "url %s", url)
		}
	})

	t.Run("empty list returns count zero", func(t *testing.T) {
		svc := &mockTaskService{
			listFn: func(ctx context.Context, uid uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
				return nil, nil
			},
		}
		handler := NewTaskHandler(svc)

		req := withUserID(httptest.NewRequest("GET", "/tasks", nil), userID)
		rr := httptest.NewRecorder()

		handler.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp TaskListResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Tasks)
	})
}

func TestUpdateTask(t *testing.T) {
	userID := uuid.New()

	t.Run("partial update forwards only present fields", func(t *testing.T) {
		var gotInput service.UpdateTaskInput
		svc := &mockTaskService{
			updateFn: func(ctx context.Context, uid uuid.UUID, taskID int64, input service.UpdateTaskInput) (*domain.Task, error) {
				gotInput = input
				task := sampleTask(uid)
				task.Title = *input.Title
				return task, nil
			},
			taskTagsFn: noTags,
		}
		handler := NewTaskHandler(svc)

		body := `{"title":"New title","priority":"low"}`
		req := withPathID(withUserID(httptest.NewRequest("PUT", "/tasks/42", bytes.NewBufferString(body)), userID), "42")
		rr := httptest.NewRecorder()

		handler.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotInput.Title)
		assert.Equal(t, "New title", *gotInput.Title)
		require.NotNil(t, gotInput.Priority)
		assert.Equal(t, domain.PriorityLow, *gotInput.Priority)
		assert.Nil(t, gotInput.Description)
		assert.Nil(t, gotInput.Tags)
		assert.False(t, gotInput.ClearDueDate)
	})

	t.Run("clear_due_date forwarded", func(t *testing.T) {
		var gotInput service.UpdateTaskInput
		svc := &mockTaskService{
			updateFn: func(ctx context.Context, uid uuid.UUID, taskID int64, input service.UpdateTaskInput) (*domain.Task, error) {
				gotInput = input
				return sampleTask(uid), nil
			},
			taskTagsFn: noTags,
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("PUT", "/tasks/42", bytes.NewBufferString(`{"clear_due_date":true}`)), userID), "42")
		rr := httptest.NewRecorder()

		handler.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, gotInput.ClearDueDate)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{
			updateFn: func(ctx context.Context, uid uuid.UUID, taskID int64, input service.UpdateTaskInput) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("PUT", "/tasks/99", bytes.NewBufferString(`{"title":"x"}`)), userID), "99")
		rr := httptest.NewRecorder()

		handler.Update(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestToggleTask(t *testing.T) {
	userID := uuid.New()

	svc := &mockTaskService{
		toggleFn: func(ctx context.Context, uid uuid.UUID, taskID int64) (*domain.Task, error) {
			task := sampleTask(uid)
			task.Completed = true
			return task, nil
		},
	}
	handler := NewTaskHandler(svc)

	req := withPathID(withUserID(httptest.NewRequest("POST", "/tasks/42/toggle", nil), userID), "42")
	rr := httptest.NewRecorder()

	handler.Toggle(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp TaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Completed)
}

func TestDeleteTask(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &mockTaskService{
			deleteFn: func(ctx context.Context, uid uuid.UUID, taskID int64) error {
				assert.Equal(t, int64(42), taskID)
				return nil
			},
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("DELETE", "/tasks/42", nil), userID), "42")
		rr := httptest.NewRecorder()

		handler.Delete(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Zero(t, rr.Body.Len())
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{
			deleteFn: func(ctx context.Context, uid uuid.UUID, taskID int64) error {
				return store.ErrTaskNotFound
			},
		}
		handler := NewTaskHandler(svc)

		req := withPathID(withUserID(httptest.NewRequest("DELETE", "/tasks/99", nil), userID), "99")
		rr := httptest.NewRecorder()

		handler.Delete(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
