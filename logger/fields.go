package logger

// Standard field names for consistent structured logging across randconst.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Source positions
	FieldFile   = "file"
	FieldOutput = "output"
	FieldLine   = "line"
	FieldColumn = "column"

	// Requests
	FieldForm   = "form"
	FieldName   = "name"
	FieldType   = "type"
	FieldLength = "length"

	// Entropy
	FieldDraws = "draws"
	FieldBytes = "bytes"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldFiles   = "files"
	FieldSplices = "splices"
	FieldCount   = "count"

	// Configuration
	FieldConfig = "config"
	FieldGOARCH = "goarch"
	FieldKey    = "key"
	FieldOp     = "op"
)
