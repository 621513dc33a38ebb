package data

import (
	"math/rand"
	"testing"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {

	type test struct {
		size   int
		groups int
	}

	tests := map[string]test{
		IceCreamKey:          {size: 12},
		SyntheticClustersKey: {size: 60, groups: 3},
		FruitsKey:            {size: 15, groups: 3},
		WeatherKey:           {size: 14, groups: 2},
		NoisySineKey:         {size: 30},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ds, err := Load(name, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Equal(t, name, ds.Name)
			assert.Equal(t, tt.size, ds.Size())
			assert.Equal(t, tt.groups, ds.Groups)
			ids := make(map[string]struct{})
			for _, p := range ds.Points {
				assert.NotEmpty(t, p.ID)
				assert.Equal(t, 2, p.Dim())
				ids[p.ID] = struct{}{}
			}
			assert.Len(t, ids, tt.size)
		})
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("iris", rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, kmath.InvalidInputErr)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{FruitsKey, IceCreamKey, NoisySineKey, SyntheticClustersKey, WeatherKey}, Names())
}

func TestIceCream(t *testing.T) {
	r := kmath.Pearson(IceCream().XY())
	assert.InDelta(t, 0.9856, r, 1e-4)
}

func TestSyntheticClusters(t *testing.T) {
	ds := SyntheticClusters(rand.New(rand.NewSource(3)))
	for _, p := range ds.Points {
		var centre [2]float64
		for _, c := range clusterCentres {
			if c.label == p.Label {
				centre = c.centre
			}
		}
		// 0.5 spread, 6 sigma at most
		d := kmath.MustDistance(p.Features, centre[:], kmath.Euclidean)
		assert.Less(t, d, 3.0)
	}
}

func TestNoisySine(t *testing.T) {
	ds := NoisySine(11, 0, rand.New(rand.NewSource(1)))
	assert.InDelta(t, 0, ds.Points[0].Y(), 1e-12)
	assert.InDelta(t, 1, ds.Points[10].X(), 1e-12)
	assert.InDelta(t, 0, ds.Points[10].Y(), 1e-9)
	// sin(2π * 0.2)
	assert.InDelta(t, 0.951, ds.Points[2].Y(), 1e-3)
}
