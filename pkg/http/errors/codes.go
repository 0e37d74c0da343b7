package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeExamNotFound  = "exam_not_found"
	ErrCodeUnknownExam   = "unknown_exam_type"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Exam lifecycle errors
	ErrCodeExamStartFailed = "exam_start_failed"
	ErrCodeExamCompleted   = "exam_already_completed"
	ErrCodeOutOfOrder      = "answer_out_of_order"
	ErrCodeExamInProgress  = "exam_in_progress"
	ErrCodeSubmitFailed    = "submit_failed"
	ErrCodeFlagFailed      = "flag_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
