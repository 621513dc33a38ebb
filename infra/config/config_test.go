package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MatchesDefaults(t *testing.T) {
	var k Kernels
	// tests run in the package dir
	require.NoError(t, Load(".", KernelsKey, &k))
	assert.Equal(t, DefaultKernels(), k)
	assert.NoError(t, k.Validate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	var k Kernels
	assert.Error(t, Load(dir, "missing", &k))

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"seed":`), 0644))
	assert.Error(t, Load(dir, "broken", &k))
}

func TestMustLoad_Panics(t *testing.T) {
	var k Kernels
	assert.Panics(t, func() {
		MustLoad("does-not-exist", &k)
	})
}

func TestKernels_Validate(t *testing.T) {

	type test struct {
		update func(k *Kernels)
	}

	tests := map[string]test{
		"metric": {update: func(k *Kernels) {
			k.KNN.Metric = "chebyshev"
		}},
		"resolution": {update: func(k *Kernels) {
			k.KNN.Resolution = 0
		}},
		"holdout": {update: func(k *Kernels) {
			k.HoldOut = 1
		}},
		"bins": {update: func(k *Kernels) {
			k.Normal.Bins = 0
		}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			k := DefaultKernels()
			tt.update(&k)
			assert.ErrorIs(t, k.Validate(), kmath.InvalidInputErr)
		})
	}
}
