package core

import (
	"encoding/json"
	"time"
)

// Placeholder marks a game with no observation in a derived view
const Placeholder = "XX"

// Result sources
const (
	SourceManual     = "manual"
	SourceBulkMatrix = "bulk-matrix"
)

// User roles, carried in the token's role claim
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Game is a catalog entry
type Game struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	DefaultTime string    `json:"defaultTime"`
	OrderIndex  int       `json:"orderIndex"`
	Active      bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Result is a single observation, unique per (GameID, DateStr, SlotMin)
type Result struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	DateStr   string    `json:"dateStr"`
	SlotMin   int       `json:"slotMin"`
	Value     string    `json:"value"`
	Note      string    `json:"note"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MatrixRow holds every requested game's value at one slot
type MatrixRow struct {
	Time    string            `json:"time"`
	SlotMin int               `json:"slotMin"`
	Values  map[string]string `json:"values"`
}

// DayItem is the latest observation of a game on a day, or its default
type DayItem struct {
	ID       *string `json:"id"`
	GameCode string  `json:"gameCode"`
	Time     string  `json:"time"`
	Value    string  `json:"value"`
}

// DayMatrix is the per-slot view of one civil date
type DayMatrix struct {
	DateStr string      `json:"dateStr"`
	Games   []string    `json:"games"`
	Rows    []MatrixRow `json:"rows"`
	Items   []DayItem   `json:"items"`
}

// SnapshotView is the point-in-time value per game
type SnapshotView struct {
	DateStr string            `json:"dateStr"`
	Time    string            `json:"time"`
	Values  map[string]string `json:"values"`
}

// MonthlyRow is one calendar day of a MonthlyChart
type MonthlyRow struct {
	DateStr string
	Values  map[string]string
}

// MarshalJSON flattens game values next to dateStr
func (r MonthlyRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(r.Values)+1)
	for code, v := range r.Values {
		flat[code] = v
	}
	flat["dateStr"] = r.DateStr
	return json.Marshal(flat)
}

// UnmarshalJSON reverses MarshalJSON
func (r *MonthlyRow) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.DateStr = flat["dateStr"]
	delete(flat, "dateStr")
	r.Values = flat
	return nil
}

// MonthlyChart has one row per day of the month
type MonthlyChart struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Games []string     `json:"games"`
	Rows  []MonthlyRow `json:"rows"`
}

// DayPair groups the yesterday/today halves of the home view
type DayPair[T any] struct {
	Yesterday T `json:"yesterday"`
	Today     T `json:"today"`
}

// HomeView is the composite landing page payload
type HomeView struct {
	DateStr    string                     `json:"dateStr"`
	Games      []Game                     `json:"games"`
	Timewise   DayPair[[]MatrixRow]       `json:"timewise"`
	Snapshot   DayPair[map[string]string] `json:"snapshot"`
	LatestTime DayPair[map[string]*int]   `json:"latestTime"`
	Monthly    MonthlyChart               `json:"monthly"`
}
