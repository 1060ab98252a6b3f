package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	xhttp "github.com/shivanshukushwah/worknest-backend/pkg/http"
)

type JobService interface {
	CreateJob(ctx context.Context, p model.JobCreateRequest) (*model.Job, error)
	GetJob(ctx context.Context, id int64) (*model.Job, error)
	ListOpenJobs(ctx context.Context, jobType model.JobType, category string, limit, offset int) ([]*model.Job, error)
	ListEmployerJobs(ctx context.Context, employerID int64) ([]*model.Job, error)
	ListMyApplications(ctx context.Context, studentID int64) ([]*model.Job, error)
	Apply(ctx context.Context, jobID int64, p model.ApplyRequest) (*model.Application, error)
	AcceptApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) (*model.Job, error)
	RejectApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) error
	ForceInspectApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) (*model.Application, error)
	ShortlistedCandidates(ctx context.Context, jobID int64, caller model.Principal) ([]*model.Application, error)
	AcceptAssignment(ctx context.Context, jobID int64, studentID int64) (*model.Job, error)
	SubmitWork(ctx context.Context, jobID int64, p model.SubmitWorkRequest) (*model.Job, error)
	ApproveCompletion(ctx context.Context, jobID int64, caller model.Principal) (*model.Job, error)
	ProcessJobPayment(ctx context.Context, jobID int64, caller model.Principal) (*model.Transaction, error)
	ReleasePayment(ctx context.Context, jobID int64, caller model.Principal) error
	CancelJob(ctx context.Context, jobID int64, caller model.Principal) (*model.Job, error)
	PenalizeNoShow(ctx context.Context, jobID, studentID int64, caller model.Principal, reason string) (int, error)
	GetSubmission(ctx context.Context, jobID int64, caller model.Principal) (*model.Submission, error)
}

type JobHandler struct {
	svc JobService
}

func NewJobHandler(jobService JobService) *JobHandler {
	return &JobHandler{
		svc: jobService,
	}
}

func RegisterJobRoutes(e *router.Group, h *JobHandler) {
	e.POST("/jobs", h.CreateJob)
	e.GET("/jobs", h.ListOpenJobs)
	e.GET("/jobs/mine", h.ListEmployerJobs)
	e.GET("/jobs/applied", h.ListMyApplications)
	e.GET("/jobs/{id}", h.GetJob)
	e.POST("/jobs/{id}/apply", h.Apply)
	e.POST("/jobs/{id}/applications/{app_id}/accept", h.AcceptApplication)
	e.POST("/jobs/{id}/applications/{app_id}/reject", h.RejectApplication)
	e.POST("/jobs/{id}/applications/{app_id}/inspect", h.ForceInspect)
	e.GET("/jobs/{id}/shortlist", h.ShortlistedCandidates)
	e.POST("/jobs/{id}/assignment/accept", h.AcceptAssignment)
	e.POST("/jobs/{id}/submit", h.SubmitWork)
	e.POST("/jobs/{id}/approve", h.ApproveCompletion)
	e.POST("/jobs/{id}/payment", h.ProcessPayment)
	e.POST("/jobs/{id}/payment/release", h.ReleasePayment)
	e.POST("/jobs/{id}/cancel", h.CancelJob)
	e.POST("/jobs/{id}/no-show", h.PenalizeNoShow)
	e.GET("/jobs/{id}/submission", h.GetSubmission)
}

type createJobRequest struct {
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	Category                string          `json:"category"`
	Budget                  float64         `json:"budget"`
	Duration                string          `json:"duration"`
	JobType                 string          `json:"job_type"`
	Location                *model.Location `json:"location,omitempty"`
	PositionsRequired       int             `json:"positions_required"`
	SubmissionRequiresFiles bool            `json:"submission_requires_files"`
	ShortlistMultiplier     int             `json:"shortlist_multiplier"`
	ShortlistWindowHours    int             `json:"shortlist_window_hours"`
}

type applyRequest struct {
	CoverLetter    string   `json:"cover_letter"`
	ProposedBudget *float64 `json:"proposed_budget,omitempty"`
	ProfileURL     string   `json:"profile_url"`
}

type submitWorkRequest struct {
	Description string   `json:"description"`
	Attachments []string `json:"attachments"`
}

type penalizeRequest struct {
	StudentID int64  `json:"student_id"`
	Reason    string `json:"reason"`
}

type jobListResponse struct {
	Items []*model.Job `json:"items"`
	Total int          `json:"total"`
}

type applicationListResponse struct {
	Items []*model.Application `json:"items"`
	Total int                  `json:"total"`
}

type scoreResponse struct {
	StudentID int64 `json:"student_id"`
	Score     int   `json:"score"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *JobHandler) CreateJob(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	var req createJobRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	job, err := h.svc.CreateJob(ctx, model.JobCreateRequest{
		EmployerID:              p.ID,
		Title:                   req.Title,
		Description:             req.Description,
		Category:                req.Category,
		Budget:                  req.Budget,
		Duration:                req.Duration,
		JobType:                 model.JobType(req.JobType),
		Location:                req.Location,
		PositionsRequired:       req.PositionsRequired,
		SubmissionRequiresFiles: req.SubmissionRequiresFiles,
		ShortlistMultiplier:     req.ShortlistMultiplier,
		ShortlistWindowHours:    req.ShortlistWindowHours,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, job)
}

func (h *JobHandler) GetJob(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	job, err := h.svc.GetJob(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) ListOpenJobs(ctx *xhttp.RequestCtx) {
	limit, offset := 20, 0
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			offset = n
		}
	}
	items, err := h.svc.ListOpenJobs(ctx, model.JobType(query(ctx, "type")), query(ctx, "category"), limit, offset)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, jobListResponse{Items: items, Total: len(items)})
}

func (h *JobHandler) ListEmployerJobs(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items, err := h.svc.ListEmployerJobs(ctx, p.ID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, jobListResponse{Items: items, Total: len(items)})
}

func (h *JobHandler) ListMyApplications(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items, err := h.svc.ListMyApplications(ctx, p.ID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, jobListResponse{Items: items, Total: len(items)})
}

func (h *JobHandler) Apply(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	var req applyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	app, err := h.svc.Apply(ctx, id, model.ApplyRequest{
		StudentID:      p.ID,
		CoverLetter:    req.CoverLetter,
		ProposedBudget: req.ProposedBudget,
		ProfileURL:     req.ProfileURL,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, app)
}

func (h *JobHandler) AcceptApplication(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	job, err := h.svc.AcceptApplication(ctx, id, pathString(ctx, "app_id"), p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) RejectApplication(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	if err := h.svc.RejectApplication(ctx, id, pathString(ctx, "app_id"), p); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "rejected"})
}

func (h *JobHandler) ForceInspect(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	app, err := h.svc.ForceInspectApplication(ctx, id, pathString(ctx, "app_id"), p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, app)
}

func (h *JobHandler) ShortlistedCandidates(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	items, err := h.svc.ShortlistedCandidates(ctx, id, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, applicationListResponse{Items: items, Total: len(items)})
}

func (h *JobHandler) AcceptAssignment(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	job, err := h.svc.AcceptAssignment(ctx, id, p.ID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) SubmitWork(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	var req submitWorkRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	job, err := h.svc.SubmitWork(ctx, id, model.SubmitWorkRequest{
		StudentID:   p.ID,
		Description: req.Description,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) ApproveCompletion(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	job, err := h.svc.ApproveCompletion(ctx, id, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) ProcessPayment(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	txn, err := h.svc.ProcessJobPayment(ctx, id, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, txn)
}

func (h *JobHandler) ReleasePayment(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	if err := h.svc.ReleasePayment(ctx, id, p); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "released"})
}

func (h *JobHandler) CancelJob(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	job, err := h.svc.CancelJob(ctx, id, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, job)
}

func (h *JobHandler) PenalizeNoShow(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	var req penalizeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	score, err := h.svc.PenalizeNoShow(ctx, id, req.StudentID, p, req.Reason)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, scoreResponse{StudentID: req.StudentID, Score: score})
}

func (h *JobHandler) GetSubmission(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid job id")
		return
	}
	sub, err := h.svc.GetSubmission(ctx, id, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, sub)
}
