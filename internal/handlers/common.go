package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/internal/services"
	xhttp "github.com/shivanshukushwah/worknest-backend/pkg/http"
)

var errMissingPrincipal = errors.New("missing authentication headers")

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	raw, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(raw, 10, 64)
}

func pathString(ctx *xhttp.RequestCtx, name string) string {
	raw, _ := ctx.UserValue(name).(string)
	return raw
}

// principal reads the identity issued by the auth boundary upstream.
// This service trusts the headers and applies its own authorization
// rules on top.
func principal(ctx *xhttp.RequestCtx) (model.Principal, error) {
	rawID := string(ctx.Request.Header.Peek("X-User-ID"))
	rawRole := string(ctx.Request.Header.Peek("X-User-Role"))
	if rawID == "" || rawRole == "" {
		return model.Principal{}, errMissingPrincipal
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return model.Principal{}, errMissingPrincipal
	}
	return model.Principal{ID: id, Role: model.Role(rawRole)}, nil
}

// writeServiceError maps service and repository sentinels onto HTTP
// statuses. Anything unmapped is a client-visible 400.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, repository.ErrJobNotFound),
		errors.Is(err, repository.ErrApplicationNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrWalletNotFound),
		errors.Is(err, repository.ErrTransactionNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		writeError(ctx, 403, err.Error())
	case errors.Is(err, errMissingPrincipal):
		writeError(ctx, 401, err.Error())
	case errors.Is(err, repository.ErrMaxRetriesExceeded),
		errors.Is(err, repository.ErrConcurrentUpdate):
		writeError(ctx, 409, err.Error())
	default:
		writeError(ctx, 400, err.Error())
	}
}
