package handler

import (
	"github.com/jmoiron/sqlx"
)

// Handler serves the operational endpoints (health, readiness, metrics).
type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}
