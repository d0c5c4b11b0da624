package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the batch ingestion job ID
	FieldJobID = "job_id"

	// FieldRunID identifies one ingestion run across all its log lines
	FieldRunID = "run_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the data source identifier (source_type)
	FieldSource = "source"

	// FieldSourceID is the record identifier within a source
	FieldSourceID = "source_id"

	// FieldMealID is the canonical meal ID
	FieldMealID = "meal_id"

	// FieldVariantID is the meal variant ID
	FieldVariantID = "variant_id"

	// FieldResolution is the brain's resolution status for a record
	FieldResolution = "resolution"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
