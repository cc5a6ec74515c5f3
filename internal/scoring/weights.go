package scoring

import (
	"fmt"
	"math"
)

// WeightVector defines the relative importance of each scoring criterion.
// All weights must sum to 1.0 (±0.01 tolerance) and lie in [0,1].
type WeightVector struct {
	Budget    float64
	Location  float64
	Amenities float64
	Size      float64
	Features  float64
	Utilities float64
}

// DefaultWeights returns the baseline weight distribution.
func DefaultWeights() WeightVector {
	return WeightVector{
		Budget:    0.30,
		Location:  0.25,
		Amenities: 0.15,
		Size:      0.10,
		Features:  0.10,
		Utilities: 0.10,
	}
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	return w.Budget + w.Location + w.Amenities + w.Size + w.Features + w.Utilities
}

// Validate checks that weights sum to 1.0 and each lies in [0,1].
func (w WeightVector) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.01 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for name, v := range w.asMap() {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s=%f outside [0,1]", name, v)
		}
	}
	return nil
}

// Merge applies a partial override onto w. Unknown criterion names are
// rejected rather than ignored, so a typo in a request surfaces as an error.
func (w WeightVector) Merge(overrides map[string]float64) (WeightVector, error) {
	out := w
	for name, v := range overrides {
		switch name {
		case "budget":
			out.Budget = v
		case "location":
			out.Location = v
		case "amenities":
			out.Amenities = v
		case "size":
			out.Size = v
		case "features":
			out.Features = v
		case "utilities":
			out.Utilities = v
		default:
			return out, fmt.Errorf("unknown weight criterion %q", name)
		}
	}
	return out, nil
}

func (w WeightVector) asMap() map[string]float64 {
	return map[string]float64{
		"budget":    w.Budget,
		"location":  w.Location,
		"amenities": w.Amenities,
		"size":      w.Size,
		"features":  w.Features,
		"utilities": w.Utilities,
	}
}
