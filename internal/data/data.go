package data

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
)

const (
	IceCreamKey          = "ice-cream"
	SyntheticClustersKey = "synthetic-clusters"
	FruitsKey            = "fruits"
	WeatherKey           = "weather"
	NoisySineKey         = "noisy-sine"
)

// Source creates a dataset, using the random source if the dataset is generated.
type Source func(rng *rand.Rand) model.Dataset

// Registry returns all built-in datasets by name.
func Registry() map[string]Source {
	return map[string]Source{
		IceCreamKey: func(rng *rand.Rand) model.Dataset {
			return IceCream()
		},
		SyntheticClustersKey: SyntheticClusters,
		FruitsKey: func(rng *rand.Rand) model.Dataset {
			return Fruits()
		},
		WeatherKey: func(rng *rand.Rand) model.Dataset {
			return Weather()
		},
		NoisySineKey: func(rng *rand.Rand) model.Dataset {
			return NoisySine(30, 0.2, rng)
		},
	}
}

// Names returns the names of all built-in datasets, sorted.
func Names() []string {
	names := make([]string, 0)
	for name := range Registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load creates the built-in dataset with the given name.
func Load(name string, rng *rand.Rand) (model.Dataset, error) {
	src, ok := Registry()[name]
	if !ok {
		return model.Dataset{}, fmt.Errorf("%w: unknown dataset '%s'", kmath.InvalidInputErr, name)
	}
	ds := src(rng)
	if err := ds.Normalize(); err != nil {
		return model.Dataset{}, fmt.Errorf("could not load dataset '%s': %w", name, err)
	}
	return ds, nil
}

func points(xy [][2]float64) []model.Point {
	pp := make([]model.Point, len(xy))
	for i, p := range xy {
		pp[i] = model.NewPoint(p[0], p[1])
	}
	return pp
}

// IceCream pairs monthly ice cream sales with drowning incidents.
// Both follow the temperature, which makes them correlate without one causing the other.
func IceCream() model.Dataset {
	return model.Dataset{
		Name:        IceCreamKey,
		Description: "ice cream sales vs drowning incidents, both driven by summer temperature",
		XLabel:      "ice cream sales",
		YLabel:      "drowning incidents",
		Features:    []string{"sales", "drownings"},
		Points: points([][2]float64{
			{50, 12}, {65, 18}, {80, 25}, {120, 35}, {150, 45}, {180, 55},
			{200, 65}, {190, 60}, {160, 40}, {100, 25}, {70, 15}, {45, 10},
		}),
	}
}

var clusterCentres = []struct {
	label  string
	color  string
	centre [2]float64
}{
	{label: "A", color: "#e41a1c", centre: [2]float64{2, 2}},
	{label: "B", color: "#377eb8", centre: [2]float64{8, 3}},
	{label: "C", color: "#4daf4a", centre: [2]float64{5, 8}},
}

// SyntheticClusters generates 3 groups of 20 points with a spread of 0.5 around centres 6 units apart.
func SyntheticClusters(rng *rand.Rand) model.Dataset {
	pp := make([]model.Point, 0, 20*len(clusterCentres))
	for _, c := range clusterCentres {
		for i := 0; i < 20; i++ {
			dx, dy := kmath.BoxMuller(rng)
			p := model.NewLabeledPoint(c.centre[0]+0.5*dx, c.centre[1]+0.5*dy, c.label).
				WithColor(c.color)
			pp = append(pp, p)
		}
	}
	return model.Dataset{
		Name:        SyntheticClustersKey,
		Description: "three well separated gaussian blobs",
		XLabel:      "x",
		YLabel:      "y",
		Features:    []string{"x", "y"},
		Groups:      len(clusterCentres),
		Points:      pp,
	}
}

// Fruits labels fruit by size (cm) and sweetness (0-10).
func Fruits() model.Dataset {
	rows := []struct {
		size, sweetness float64
		label           string
	}{
		{7.0, 7.5, "apple"}, {7.5, 8.0, "apple"}, {6.8, 7.0, "apple"}, {8.0, 8.5, "apple"}, {7.2, 6.5, "apple"},
		{9.0, 6.0, "orange"}, {9.5, 5.5, "orange"}, {8.8, 6.5, "orange"}, {10.0, 5.0, "orange"}, {9.2, 5.8, "orange"},
		{5.5, 2.0, "lemon"}, {6.0, 1.5, "lemon"}, {5.0, 2.5, "lemon"}, {6.2, 1.0, "lemon"}, {5.8, 3.0, "lemon"},
	}
	colors := map[string]string{
		"apple":  "#d62728",
		"orange": "#ff7f0e",
		"lemon":  "#bcbd22",
	}
	pp := make([]model.Point, len(rows))
	for i, r := range rows {
		pp[i] = model.NewLabeledPoint(r.size, r.sweetness, r.label).WithColor(colors[r.label])
	}
	return model.Dataset{
		Name:        FruitsKey,
		Description: "fruit classified by size and sweetness",
		XLabel:      "size (cm)",
		YLabel:      "sweetness",
		Features:    []string{"size", "sweetness"},
		Groups:      3,
		Points:      pp,
	}
}

// Weather is the numeric play-golf dataset: temperature and humidity against the decision to play.
func Weather() model.Dataset {
	rows := []struct {
		temperature, humidity float64
		play                  string
	}{
		{85, 85, "no"}, {80, 90, "no"}, {83, 86, "yes"}, {70, 96, "yes"}, {68, 80, "yes"},
		{65, 70, "no"}, {64, 65, "yes"}, {72, 95, "no"}, {69, 70, "yes"}, {75, 80, "yes"},
		{75, 70, "yes"}, {72, 90, "yes"}, {81, 75, "yes"}, {71, 91, "no"},
	}
	pp := make([]model.Point, len(rows))
	for i, r := range rows {
		pp[i] = model.NewLabeledPoint(r.temperature, r.humidity, r.play)
	}
	return model.Dataset{
		Name:        WeatherKey,
		Description: "whether to play golf given temperature and humidity",
		XLabel:      "temperature (F)",
		YLabel:      "humidity (%)",
		Features:    []string{"temperature", "humidity"},
		Groups:      2,
		Points:      pp,
	}
}

// NoisySine samples n points of sin(2πx) on [0,1] with gaussian noise of the given stddev.
func NoisySine(n int, noise float64, rng *rand.Rand) model.Dataset {
	step := 0.0
	if n > 1 {
		step = 1 / float64(n-1)
	}
	xx := kmath.Series(step, n)
	yy := kmath.Sine(1, xx, 2*math.Pi)
	pp := make([]model.Point, n)
	for i := range xx {
		z, _ := kmath.BoxMuller(rng)
		pp[i] = model.NewPoint(xx[i], yy[i]+noise*z)
	}
	return model.Dataset{
		Name:        NoisySineKey,
		Description: "noisy samples of a sine wave, for under and over fitting",
		XLabel:      "x",
		YLabel:      "y",
		Features:    []string{"x", "y"},
		Points:      pp,
	}
}
