package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/modguard/errors"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyTrustLocal},
		{in: "trust-local", want: PolicyTrustLocal},
		{in: " Consult-Store ", want: PolicyConsultStore},
		{in: "consult", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	var cfg Config
	err := yaml.Unmarshal([]byte("diagnostics_enabled: true\npolicy: consult-store\n"), &cfg)
	require.NoError(t, err)
	assert.True(t, cfg.DiagnosticsEnabled)
	assert.Equal(t, PolicyConsultStore, cfg.Policy)

	err = yaml.Unmarshal([]byte("policy: sometimes\n"), &cfg)
	assert.Error(t, err)
}

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "trust-local", Policy("").String())
	assert.Equal(t, "consult-store", PolicyConsultStore.String())
}
