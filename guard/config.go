package guard

import (
	"strings"

	"github.com/wippyai/modguard/errors"
)

// Policy selects how the guard treats resources that already exist in the
// store when it has no outstanding acquisitions for them.
type Policy string

const (
	// PolicyTrustLocal decides every transition from the local count alone.
	// With diagnostics on, a pre-existing resource is reported before the
	// guard creates it again.
	PolicyTrustLocal Policy = "trust-local"

	// PolicyConsultStore probes the store on transitions across zero. A
	// resource created outside the guard is adopted with a phantom
	// reference instead of being created again, and a resource already
	// removed from the store is not destroyed twice.
	PolicyConsultStore Policy = "consult-store"
)

// ParsePolicy parses a policy name. The empty string selects PolicyTrustLocal.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyTrustLocal:
		return PolicyTrustLocal, nil
	case PolicyConsultStore:
		return PolicyConsultStore, nil
	default:
		return "", errors.InvalidConfig("unknown policy %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Policy) String() string {
	if p == "" {
		return string(PolicyTrustLocal)
	}
	return string(p)
}

// Config is the construction-time configuration of a Guard.
type Config struct {
	// DiagnosticsEnabled turns on the diagnostic log. When false every
	// diagnostic site reduces to a single branch.
	DiagnosticsEnabled bool `yaml:"diagnostics_enabled"`

	// Policy defaults to PolicyTrustLocal.
	Policy Policy `yaml:"policy"`
}
