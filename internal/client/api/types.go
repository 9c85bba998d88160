package api

import (
	"time"

	"resultboard/internal/server/core"
)

// Payloads shared with the server
type (
	Game              = core.Game
	Result            = core.Result
	DayMatrix         = core.DayMatrix
	SnapshotView      = core.SnapshotView
	MonthlyChart      = core.MonthlyChart
	HomeView          = core.HomeView
	HealthResponse    = core.HealthResponse
	ErrorResponse     = core.ErrorResponse
	CreateGameRequest = core.CreateGameRequest
	UpdateGameRequest = core.UpdateGameRequest
	BulkGameItem      = core.BulkGameItem
	BulkResponse      = core.BulkResponse
	ResultRequest     = core.ResultRequest
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
