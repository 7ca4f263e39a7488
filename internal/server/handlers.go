// Package server provides the HTTP API over the clicker contract wrapper.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"clicker/internal/clicker"
	"clicker/internal/core"
	"clicker/internal/journal"
)

// Service is the contract surface the API exposes.
type Service interface {
	GetFortune(ctx context.Context) (json.RawMessage, error)
	GetScores(ctx context.Context) (json.RawMessage, error)
	UpsertScore(ctx context.Context, score uint16, opts ...clicker.Option) (*core.TxResult, error)
	Send(ctx context.Context, addr, amount string, opts ...clicker.Option) (*core.TxResult, error)
}

// JournalReader lists executed transactions.
type JournalReader interface {
	List(ctx context.Context, f journal.Filter) ([]*journal.Entry, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler holds the HTTP handlers
type Handler struct {
	service Service
	wallets core.Wallets
	journal JournalReader
}

// NewHandler creates a new handler. wallets resolves the optional "signer"
// field of execute requests.
func NewHandler(service Service, wallets core.Wallets) *Handler {
	return &Handler{
		service: service,
		wallets: wallets,
	}
}

type upsertScoreRequest struct {
	Score  *uint16 `json:"score" validate:"required"`
	Signer string  `json:"signer"`
}

type sendRequest struct {
	Addr   string `json:"addr" validate:"required"`
	Amount string `json:"amount" validate:"required,numeric"`
	Signer string `json:"signer"`
}

type txsResponse struct {
	Txs []*journal.Entry `json:"txs"`
}

// Health handles GET /health
//
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Fortune handles GET /v1/fortune
//
// @Summary      Query the contract fortune
// @Tags         clicker
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  object  "get_fortune query result"
// @Failure      404  {object}  core.ChainError
// @Failure      502  {object}  core.ChainError
// @Router       /v1/fortune [get]
func (h *Handler) Fortune(c echo.Context) error {
	raw, err := h.service.GetFortune(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// Scores handles GET /v1/scores
//
// @Summary      Query all scores
// @Tags         clicker
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  object  "get_scores query result"
// @Failure      502  {object}  core.ChainError
// @Router       /v1/scores [get]
func (h *Handler) Scores(c echo.Context) error {
	raw, err := h.service.GetScores(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// UpsertScore handles POST /v1/scores
//
// @Summary      Upsert the signer's score
// @Tags         clicker
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      upsertScoreRequest  true  "Score and optional signer"
// @Success      200      {object}  core.TxResult
// @Failure      400      {object}  core.ChainError
// @Failure      422      {object}  core.ChainError
// @Router       /v1/scores [post]
func (h *Handler) UpsertScore(c echo.Context) error {
	var req upsertScoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, err)
	}

	opts, err := h.signerOptions(req.Signer)
	if err != nil {
		return handleError(c, err)
	}

	result, err := h.service.UpsertScore(c.Request().Context(), *req.Score, opts...)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Send handles POST /v1/send
//
// @Summary      Send a reward from the contract
// @Tags         clicker
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      sendRequest  true  "Recipient, amount and optional signer"
// @Success      200      {object}  core.TxResult
// @Failure      400      {object}  core.ChainError
// @Failure      422      {object}  core.ChainError
// @Router       /v1/send [post]
func (h *Handler) Send(c echo.Context) error {
	var req sendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, err)
	}

	opts, err := h.signerOptions(req.Signer)
	if err != nil {
		return handleError(c, err)
	}

	result, err := h.service.Send(c.Request().Context(), req.Addr, req.Amount, opts...)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Txs handles GET /v1/txs?signer=name&limit=n
//
// @Summary      List journaled transactions
// @Tags         journal
// @Produce      json
// @Security     BearerAuth
// @Param        signer  query     string  false  "Filter by signer identity"
// @Param        limit   query     int     false  "Max entries (default 50, max 500)"
// @Success      200     {object}  txsResponse
// @Failure      400     {object}  core.ChainError
// @Failure      404     {object}  core.ChainError
// @Router       /v1/txs [get]
func (h *Handler) Txs(c echo.Context) error {
	if h.journal == nil {
		return handleError(c, core.NewNotFoundError("transaction journal is disabled"))
	}

	filter := journal.Filter{Signer: c.QueryParam("signer")}
	if l := c.QueryParam("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			return handleError(c, core.NewInvalidRequestError("limit must be a positive integer", err))
		}
		filter.Limit = limit
	}

	entries, err := h.journal.List(c.Request().Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, txsResponse{Txs: entries})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return core.NewInvalidRequestError("invalid request body: "+err.Error(), err)
	}
	if err := validate.Struct(req); err != nil {
		return core.NewInvalidRequestError("invalid request body: "+err.Error(), err)
	}
	return nil
}

// signerOptions maps an optional identity name to a wrapper option. An empty
// name keeps the wrapper's default signer.
func (h *Handler) signerOptions(name string) ([]clicker.Option, error) {
	if name == "" {
		return nil, nil
	}
	signer, ok := h.wallets[name]
	if !ok {
		return nil, core.NewInvalidRequestError(fmt.Sprintf("unknown signer %q", name), nil)
	}
	return []clicker.Option{clicker.WithSigner(signer)}, nil
}

// handleError converts chain errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var chainErr *core.ChainError
	if errors.As(err, &chainErr) {
		return c.JSON(chainErr.HTTPStatusCode(), chainErr.ToJSON())
	}

	slog.Error("unexpected error", "error", err, "request_id", core.GetRequestID(c.Request().Context()))

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
