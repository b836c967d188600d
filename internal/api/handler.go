package api

import (
	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/lifecycle"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	engine       *lifecycle.Engine
	interceptor  *mutation.Interceptor
	tokens       *auth.TokenManager
	recorder     *audit.Recorder
	cookieMaxAge int
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	engine *lifecycle.Engine,
	interceptor *mutation.Interceptor,
	tokens *auth.TokenManager,
	recorder *audit.Recorder,
	cookieMaxAge int,
) *Handler {
	return &Handler{
		store:        s,
		engine:       engine,
		interceptor:  interceptor,
		tokens:       tokens,
		recorder:     recorder,
		cookieMaxAge: cookieMaxAge,
	}
}
