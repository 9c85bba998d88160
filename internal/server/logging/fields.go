package logging

// Structured log field keys
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldDate       = "date"
	FieldGameCode   = "game_code"
	FieldUserID     = "user_id"
	FieldRole       = "role"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldAddr       = "addr"
)
