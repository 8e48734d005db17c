// Package config holds the onboarding service configuration.
//
// Each concern has its own struct with env tags, read in main with
// cleanenv:
//
//	var sess config.SessionConfig
//	if err := cleanenv.ReadEnv(&sess); err != nil {
//		log.Fatal(err)
//	}
//
// RateLimitConfig has no tags; NewRateLimitConfigFromEnv fills it from the
// RATELIMIT_* variables using the GetEnv helpers.
//
// Validation helpers return *ValidationError values that CollectErrors
// folds into ValidationErrors, and Validate combines several configs:
//
//	if err := config.Validate(sess.Validate, drafts.Validate); err != nil {
//		log.Fatal(err)
//	}
package config
