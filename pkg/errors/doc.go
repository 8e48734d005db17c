// Package errors provides structured error handling with error codes for the
// onboarding service.
//
// Every service-level failure is an *Error carrying a typed ErrorCode, a
// human-readable message and optional details. HTTP handlers translate the
// code into a status with HTTPStatusCode.
//
//	err := errors.New(errors.ErrCodeTooFewSkills, "select at least 3 skills").
//		WithDetail("selected", 2)
//
//	if errors.IsCode(err, errors.ErrCodeTooFewSkills) {
//		// keep the submit control disabled
//	}
//
// Error code to HTTP status mapping:
//   - ErrCodeValidationFailed, ErrCodeUnknownField, ErrCodeUnknownTag → 400
//   - ErrCodeMissingDraft → 404
//   - ErrCodeSubmissionInFlight, ErrCodeUserAlreadyExists → 409
//   - ErrCodeTooFewSkills → 422
//   - ErrCodeRateLimitExceeded → 429
//   - ErrCodeSubmissionFailed → 502
//   - ErrCodeInternal → 500
package errors
