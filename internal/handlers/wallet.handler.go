package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	xhttp "github.com/shivanshukushwah/worknest-backend/pkg/http"
)

type WalletService interface {
	CreateWallet(ctx context.Context, userID int64) (*model.Wallet, error)
	GetWallet(ctx context.Context, userID int64) (*model.Wallet, error)
	AddFunds(ctx context.Context, userID int64, amount float64, description string) (*model.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID int64, amount float64, description string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type WalletHandler struct {
	svc WalletService
}

func NewWalletHandler(walletService WalletService) *WalletHandler {
	return &WalletHandler{
		svc: walletService,
	}
}

func RegisterWalletRoutes(e *router.Group, h *WalletHandler) {
	e.POST("/wallets", h.CreateWallet)
	e.GET("/wallets/me", h.GetWallet)
	e.POST("/wallets/deposit", h.AddFunds)
	e.POST("/wallets/withdraw", h.RequestWithdrawal)
	e.GET("/transactions", h.ListTransactions)
}

type amountRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type transactionListResponse struct {
	Items []*model.Transaction `json:"items"`
	Total int64                `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *WalletHandler) CreateWallet(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	wallet, err := h.svc.CreateWallet(ctx, p.ID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, wallet)
}

func (h *WalletHandler) GetWallet(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	wallet, err := h.svc.GetWallet(ctx, p.ID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, wallet)
}

func (h *WalletHandler) AddFunds(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	var req amountRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	txn, err := h.svc.AddFunds(ctx, p.ID, req.Amount, req.Description)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, txn)
}

func (h *WalletHandler) RequestWithdrawal(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	var req amountRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	txn, err := h.svc.RequestWithdrawal(ctx, p.ID, req.Amount, req.Description)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, txn)
}

func (h *WalletHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	p, err := principal(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	f := model.TransactionFilter{UserID: &p.ID}
	if v := query(ctx, "type"); v != "" {
		t := model.TransactionType(v)
		f.Type = &t
	}
	if v := query(ctx, "status"); v != "" {
		s := model.TransactionStatus(v)
		f.Status = &s
	}
	if v := query(ctx, "job_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.JobID = &id
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	items, total, err := h.svc.ListTransactions(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, transactionListResponse{Items: items, Total: total})
}
