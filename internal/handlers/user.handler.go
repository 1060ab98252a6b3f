package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/services"
	xhttp "github.com/shivanshukushwah/worknest-backend/pkg/http"
)

type UserService interface {
	Register(ctx context.Context, p model.UserCreateRequest) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	VerifyPhone(ctx context.Context, id int64) error
}

type ScoreHistoryService interface {
	History(ctx context.Context, userID int64, limit int) ([]*model.ScoreLog, error)
}

type UserHandler struct {
	svc    UserService
	scores ScoreHistoryService
}

func NewUserHandler(userService UserService, scoreService ScoreHistoryService) *UserHandler {
	return &UserHandler{
		svc:    userService,
		scores: scoreService,
	}
}

func RegisterUserRoutes(e *router.Group, h *UserHandler) {
	e.POST("/users", h.Register)
	e.GET("/users/{id}", h.GetUser)
	e.POST("/users/{id}/verify-phone", h.VerifyPhone)
	e.GET("/users/{id}/score-logs", h.ScoreLogs)
}

type registerRequest struct {
	Name     string                 `json:"name"`
	Email    string                 `json:"email"`
	Role     string                 `json:"role"`
	Phone    string                 `json:"phone"`
	Student  *model.StudentProfile  `json:"student,omitempty"`
	Employer *model.EmployerProfile `json:"employer,omitempty"`
}

type scoreLogListResponse struct {
	Items []*model.ScoreLog `json:"items"`
	Total int               `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *UserHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	user, err := h.svc.Register(ctx, model.UserCreateRequest{
		Name:     req.Name,
		Email:    req.Email,
		Role:     model.Role(req.Role),
		Phone:    req.Phone,
		Student:  req.Student,
		Employer: req.Employer,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, user)
}

func (h *UserHandler) GetUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}
	user, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, user)
}

// VerifyPhone marks a phone confirmed. Self-service or admin only.
func (h *UserHandler) VerifyPhone(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}
	if id != p.ID && !p.IsAdmin() {
		writeServiceError(ctx, services.ErrNotAuthorized)
		return
	}
	if err := h.svc.VerifyPhone(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]bool{"is_phone_verified": true})
}

func (h *UserHandler) ScoreLogs(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}
	limit := 50
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}
	items, err := h.scores.History(ctx, id, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, scoreLogListResponse{Items: items, Total: len(items)})
}
