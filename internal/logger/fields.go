package logger

// Fields is an alias for map[string]any for convenience.
type Fields map[string]any

const (
	FieldService    = "service"
	FieldRequestID  = "request_id"
	FieldAnalysisID = "analysis_id"
	FieldComponent  = "component"
	FieldDurationMs = "duration_ms"
	FieldStatus     = "status"
)
