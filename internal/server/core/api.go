package core

// Request types

type CreateGameRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,gamecode"`
	DefaultTime string `json:"defaultTime,omitempty" validate:"omitempty,max=16"`
	OrderIndex  int    `json:"orderIndex,omitempty" validate:"omitempty,max=999"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type UpdateGameRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	NewCode     *string `json:"newCode,omitempty" validate:"omitempty,gamecode"`
	DefaultTime *string `json:"defaultTime,omitempty" validate:"omitempty,max=16"`
	OrderIndex  *int    `json:"orderIndex,omitempty" validate:"omitempty,max=999"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// BulkGameItem is one element of a bulk upsert array, validated per item
type BulkGameItem struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	DefaultTime string `json:"defaultTime,omitempty"`
	OrderIndex  int    `json:"orderIndex,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type ResultRequest struct {
	GameCode string `json:"gameCode" validate:"required,gamecode"`
	DateStr  string `json:"dateStr" validate:"required,civildate"`
	Time     string `json:"time" validate:"required,min=3,max=16"`
	Value    string `json:"value" validate:"required,min=1,max=16"`
	Note     string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// Query types, filled from the query string

type DateQuery struct {
	DateStr string `query:"dateStr" validate:"required,civildate"`
}

type SnapshotQuery struct {
	DateStr string `query:"dateStr" validate:"required,civildate"`
	Time    string `query:"time" validate:"required,min=3,max=16"`
}

type MonthlyQuery struct {
	Year  int    `query:"year" validate:"required,min=2000,max=2100"`
	Month int    `query:"month" validate:"required,min=1,max=12"`
	Games string `query:"games" validate:"omitempty,gamelist"`
}

type HomeQuery struct {
	DateStr string `query:"dateStr" validate:"omitempty,civildate"`
}

// Response types

type GameResponse struct {
	Game Game `json:"game"`
}

type GamesResponse struct {
	Games []Game `json:"games"`
}

// BulkOutcome reports what happened to one bulk item
type BulkOutcome struct {
	Code   string `json:"code"`
	Action string `json:"action"` // "created" or "updated"
}

type BulkResponse struct {
	Results []BulkOutcome `json:"results"`
}

type DeletedGameResponse struct {
	Deleted string `json:"deleted"`
}

type DeletedResultResponse struct {
	DeletedID string `json:"deletedId"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"` // "ok" or "degraded"
}
