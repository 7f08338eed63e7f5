package material

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    Form
		want    Profile
		wantErr string
	}{
		{
			name: "decimal comma accepted",
			form: Form{Name: " PETG ", CostPerGram: "0,1", Density: "1,27", EnergyConsumption: "0.035"},
			want: Profile{ID: "p1", Name: "PETG", CostPerGram: 0.1, Density: 1.27, EnergyConsumption: 0.035},
		},
		{
			name:    "missing field",
			form:    Form{Name: "PLA", CostPerGram: "0.08", Density: ""},
			wantErr: "all fields are required",
		},
		{
			name:    "non-numeric cost",
			form:    Form{Name: "PLA", CostPerGram: "cheap", Density: "1.2", EnergyConsumption: "0"},
			wantErr: "costPerGram must be numeric",
		},
		{
			name:    "zero density",
			form:    Form{Name: "PLA", CostPerGram: "0.08", Density: "0", EnergyConsumption: "0"},
			wantErr: "density must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseForm("p1", tt.form)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidProfile)
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Equal(t, Profile{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormFromRoundTrips(t *testing.T) {
	t.Parallel()

	got, err := ParseForm(pla().ID, FormFrom(pla()))
	require.NoError(t, err)
	assert.Equal(t, pla(), got)
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	want := []Profile{pla(), {ID: "m2", Name: "PETG", CostPerGram: 0.1, Density: 1.27, EnergyConsumption: 0.035}}

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, want))
	assert.Contains(t, buf.String(), "costPerGram: 0.08")

	got, err := DecodeYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeYAMLValidates(t *testing.T) {
	t.Parallel()

	_, err := DecodeYAML(strings.NewReader("profiles:\n  - name: Broken\n    density: 0\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.ErrorContains(t, err, "profile 1")

	empty, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
