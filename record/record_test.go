package record

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOverwritesInPlace(t *testing.T) {
	r := New()
	assert.False(t, r.Set(KeySubsystem, "VTXIB"))
	assert.False(t, r.Set(KeyLayer, 1))
	assert.False(t, r.Set("theta_range", "10.0,10.0"))
	assert.True(t, r.Set(KeyLayer, "2"))

	if diff := cmp.Diff([]string{KeySubsystem, KeyLayer, "theta_range"}, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	layer, err := r.Int(KeyLayer)
	require.NoError(t, err)
	assert.Equal(t, 2, layer)
}

func TestMarshalOrderAndNaN(t *testing.T) {
	r := New()
	r.Set(KeySubsystem, "VTXIB")
	r.Set(KeyLayer, 1)
	r.Set(KeyRadius, 13.7)
	r.Set(KeySigma, math.NaN())
	r.Set(KeySigmaFWHM, math.Inf(1))

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"subsystem":"VTXIB","layer":1,"radius":13.7,"sigma":null,"sigma_FWHM":null}`, string(raw))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mu_minus_theta_10_p_1.json")

	r := New()
	r.Set(KeySubsystem, "VTXIB")
	r.Set(KeyLayer, 1)
	r.Set(KeyRadius, 11.7)
	r.Set("mom_range", "5.0,5.0")
	r.Set(KeyRMS, 4.9)
	r.Set(KeySigmaErr, math.NaN())
	require.NoError(t, r.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"subsystem\": \"VTXIB\",\n")

	got, err := ReadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(r.Keys(), got.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	mom, err := got.Float("mom_range")
	require.NoError(t, err)
	assert.Equal(t, 5.0, mom)

	rms, err := got.Float(KeyRMS)
	require.NoError(t, err)
	assert.Equal(t, 4.9, rms)

	sErr, err := got.Float(KeySigmaErr)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(sErr))

	sub, err := got.String(KeySubsystem)
	require.NoError(t, err)
	assert.Equal(t, "VTXIB", sub)

	layer, err := got.Int(KeyLayer)
	require.NoError(t, err)
	assert.Equal(t, 1, layer)
}

func TestAccessorErrors(t *testing.T) {
	r := New()
	r.Set("pid_list", "mu")
	r.Set("nested", map[string]any{"a": 1.0})
	r.Set(KeySigma, nil)

	_, err := r.Float("missing")
	assert.Error(t, err)
	_, err = r.Float("pid_list")
	assert.Error(t, err)
	_, err = r.Float("nested")
	assert.Error(t, err)
	_, err = r.Int(KeySigma)
	assert.Error(t, err)
	_, err = r.String(KeySigma)
	assert.Error(t, err)
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	r := New()
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), r))
	assert.Error(t, json.Unmarshal([]byte(`{"a":}`), r))

	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
