package field

// Aggregation selects how cell values combine in volume summaries.
type Aggregation uint8

const (
	AggMean Aggregation = iota
	AggMax
	AggMin
	AggMode
)

// FieldSpec describes the physical behavior of one field.
type FieldSpec struct {
	// Valid value range. Stamp results are clamped to it.
	Min, Max float32
	// Ambient is the unperturbed baseline every reset restores.
	Ambient float32
	// Aggregation used when a single representative value is needed.
	Aggregation Aggregation
	// Diffusion rate per second toward the neighbor mean (0 = none).
	Diffusion float32
	// Decay rate per second of the above-ambient excess (0 = none).
	Decay float32
}

var specs = [Count]FieldSpec{
	Occupancy:   {Min: 0, Max: 1, Ambient: 0, Aggregation: AggMax},
	Material:    {Min: 0, Max: 255, Ambient: 0, Aggregation: AggMode},
	Integrity:   {Min: 0, Max: 1, Ambient: 1, Aggregation: AggMean},
	Temperature: {Min: 0, Max: 10000, Ambient: 293, Aggregation: AggMean, Diffusion: 0.05},
	Smoke:       {Min: 0, Max: 1, Ambient: 0, Aggregation: AggMean, Diffusion: 0.10, Decay: 0.02},
	Noise:       {Min: 0, Max: 200, Ambient: 0, Aggregation: AggMax, Decay: 0.30},
	Signal:      {Min: 0, Max: 1, Ambient: 0, Aggregation: AggMax, Decay: 0.10},
	CurrentX:    {Min: -10, Max: 10, Ambient: 0, Aggregation: AggMean},
	CurrentY:    {Min: -10, Max: 10, Ambient: 0, Aggregation: AggMean},
	Depth:       {Min: 0, Max: 10000, Ambient: 100, Aggregation: AggMean},
	Salinity:    {Min: 0, Max: 50, Ambient: 35, Aggregation: AggMean, Diffusion: 0.001},
	SonarReturn: {Min: 0, Max: 1, Ambient: 0, Aggregation: AggMax, Decay: 0.50},
}

// Spec returns the spec for a field.
func Spec(f Field) FieldSpec { return specs[f.Index()] }

// Clamp limits a value to the field's valid range.
func (s FieldSpec) Clamp(v float32) float32 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Diffusive reports whether the field relaxes toward its neighbor mean.
func (s FieldSpec) Diffusive() bool { return s.Diffusion > 0 }

// Decaying reports whether the field's excess over ambient fades over time.
func (s FieldSpec) Decaying() bool { return s.Decay > 0 }
