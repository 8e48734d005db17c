package config

import "time"

const (
	FinalizerSimulated = "simulated"
	FinalizerLocal     = "local"
	FinalizerRemote    = "remote"
)

// FinalizerConfig selects how completed signups become accounts
type FinalizerConfig struct {
	Mode          string        `env:"FINALIZER_MODE" env-default:"simulated"`
	Delay         time.Duration `env:"FINALIZER_DELAY" env-default:"1s"`
	RemoteURL     string        `env:"FINALIZER_REMOTE_URL" env-default:""`
	RemoteTimeout time.Duration `env:"FINALIZER_REMOTE_TIMEOUT" env-default:"30s"`
}

func (f FinalizerConfig) Validate() ValidationErrors {
	errs := CollectErrors(
		RequireOneOf("FINALIZER_MODE", f.Mode, []string{FinalizerSimulated, FinalizerLocal, FinalizerRemote}),
		RequireNonNegativeDuration("FINALIZER_DELAY", f.Delay),
	)
	if f.Mode == FinalizerRemote {
		errs = append(errs, CollectErrors(
			RequireValidURL("FINALIZER_REMOTE_URL", f.RemoteURL),
			RequirePositiveDuration("FINALIZER_REMOTE_TIMEOUT", f.RemoteTimeout),
		)...)
	}
	return errs
}
