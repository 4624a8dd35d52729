package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/donelist/backend/api/transport"
	"github.com/donelist/backend/domain"
	"github.com/donelist/backend/pkg/httpcontext"
	"github.com/donelist/backend/repository"
	taskUC "github.com/donelist/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List active tasks
// @Tags tasks
// @Router /api/v1/tasks/active [get]
func (h *TaskHandler) ListActive(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.uc.ListActive, h.uc.ListActivePage)
}

// @Summary List completed tasks
// @Tags tasks
// @Router /api/v1/tasks/completed [get]
func (h *TaskHandler) ListCompleted(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.uc.ListCompleted, h.uc.ListCompletedPage)
}

// @Summary List overdue tasks
// @Tags tasks
// @Router /api/v1/tasks/overdue [get]
func (h *TaskHandler) ListOverdue(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	term, limit, _ := listArgs(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListOverdue(stdCtx, userID, term, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, emptyToSlice(tasks))
}

// @Summary Count tasks per bucket
// @Tags tasks
// @Router /api/v1/tasks/counts [get]
func (h *TaskHandler) Counts(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	counts, err := h.uc.CountAll(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, counts)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) AddTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.AddTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := h.uc.AddTask(stdCtx, userID, taskUC.AddTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueDateNum:  req.DueDateNum,
		Categories:  req.Categories,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]string{"id": id})
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.CompleteTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	outcome, err := h.uc.CompleteTask(stdCtx, userID, id, req.Completed)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, outcome)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) RemoveTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	outcome, err := h.uc.RemoveTask(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, outcome)
}

// list serves both the plain and the paginated variants of a bucket listing:
// a cursor query argument selects the paginated path.
func (h *TaskHandler) list(
	ctx *fasthttp.RequestCtx,
	plain func(ctx context.Context, ownerID, term string, limit int) ([]domain.Task, error),
	paged func(ctx context.Context, ownerID, term, cursor string) (*repository.Page, error),
) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	term, limit, cursor := listArgs(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if hasCursorArg(ctx) {
		page, err := paged(stdCtx, userID, term, cursor)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		meta := transport.PageMeta{Cursor: page.Cursor, HasMore: page.HasMore}
		h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(emptyToSlice(page.Items), meta))
		return
	}

	tasks, err := plain(stdCtx, userID, term, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, emptyToSlice(tasks))
}

func listArgs(ctx *fasthttp.RequestCtx) (term string, limit int, cursor string) {
	term = string(ctx.QueryArgs().Peek("term"))
	limit = parseInt(string(ctx.QueryArgs().Peek("limit")), 0)
	cursor = string(ctx.QueryArgs().Peek("cursor"))
	return term, limit, cursor
}

func hasCursorArg(ctx *fasthttp.RequestCtx) bool {
	return ctx.QueryArgs().Has("cursor")
}

// emptyToSlice keeps empty listings serialized as [] rather than null.
func emptyToSlice(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
