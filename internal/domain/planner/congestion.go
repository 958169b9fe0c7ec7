package planner

import (
	"math"
	"math/rand"
	"time"
)

// TrafficLevel is the qualitative classification of congestion severity.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficMedium TrafficLevel = "medium"
	TrafficHigh   TrafficLevel = "high"
)

// Free-flow routing estimates are systematically optimistic for urban streets
// (signals, crossings), so every drive estimate carries this correction.
const baseCityFactor = 1.15

// Classification thresholds on the percentage excess over free flow.
const (
	highTrafficExcessPct   = 40.0
	mediumTrafficExcessPct = 15.0
)

// NoiseSource produces a small symmetric perturbation added to the congestion
// term, emulating unmodeled variance (weather, incidents). The default source
// is seeded pseudo-random; tests inject a fixed source for determinism.
type NoiseSource func() float64

// CongestionEstimate is the output of the congestion model.
type CongestionEstimate struct {
	Factor       float64      `json:"congestion_factor"`
	DelaySeconds int          `json:"delay_seconds"`
	Level        TrafficLevel `json:"traffic_level"`
}

// CongestionModel computes a time-dependent multiplicative delay factor for
// drive durations from the local wall-clock time.
type CongestionModel struct {
	noise NoiseSource
}

// NewCongestionModel creates a model with a seeded random noise source.
func NewCongestionModel() *CongestionModel {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return NewCongestionModelWithNoise(func() float64 {
		return rng.Float64()*0.1 - 0.05
	})
}

// NewCongestionModelWithNoise creates a model with an injected noise source.
func NewCongestionModelWithNoise(noise NoiseSource) *CongestionModel {
	return &CongestionModel{noise: noise}
}

// Estimate computes the congestion factor, the resulting delay over the base
// duration and the qualitative level for the given wall-clock time.
func (m *CongestionModel) Estimate(baseDurationSeconds int, at time.Time) CongestionEstimate {
	factor := m.Factor(at)

	total := float64(baseDurationSeconds) * factor
	delay := int(math.Round(total - float64(baseDurationSeconds)))
	if delay < 0 {
		delay = 0
	}

	return CongestionEstimate{
		Factor:       factor,
		DelaySeconds: delay,
		Level:        classifyExcess(factor),
	}
}

// Factor computes the total multiplicative delay factor at the given time,
// clamped so congestion never reduces a duration below free flow.
func (m *CongestionModel) Factor(at time.Time) float64 {
	congestion := congestionTerm(at)
	if m.noise != nil {
		congestion += m.noise()
	}

	total := baseCityFactor * congestion
	return math.Max(total, 1.0)
}

// congestionTerm is the deterministic part of the model: 1.0 plus the sum of
// day-and-hour dependent bumps, before the city correction and noise.
func congestionTerm(at time.Time) float64 {
	hour := float64(at.Hour()) + float64(at.Minute())/60.0
	day := at.Weekday()

	congestion := 1.0

	switch {
	case day >= time.Monday && day <= time.Friday:
		// Morning rush builds around 07:40 on every working day.
		morningPeak := gaussianPeak(hour, 7.66, 0.9, 0.70)

		var afternoonPeak float64
		if day == time.Friday {
			// Weekend departures: the Friday peak starts earlier and runs heavier.
			afternoonPeak = gaussianPeak(hour, 15.0, 1.2, 0.85)
		} else {
			afternoonPeak = gaussianPeak(hour, 16.25, 1.0, 0.75)
		}

		var businessTraffic float64
		if hour > 9 && hour < 14.5 {
			businessTraffic = 0.15
		}

		var eveningTraffic float64
		if hour > 18 && hour < 21 {
			eveningTraffic = 0.05
		}

		congestion += morningPeak + afternoonPeak + businessTraffic + eveningTraffic

	case day == time.Saturday:
		// Midday shopping and leisure trips.
		congestion += gaussianPeak(hour, 12.0, 1.5, 0.30)

	default: // Sunday
		if hour < 10 {
			// Near-empty roads before mid-morning.
			congestion = 0.95
		} else {
			// Evening return traffic.
			congestion += gaussianPeak(hour, 18.0, 1.5, 0.25)
		}
	}

	return congestion
}

// gaussianPeak contributes intensity * exp(-(hour-peak)^2 / (2*width^2)),
// a smooth rise and fall around the peak hour.
func gaussianPeak(hour, peakHour, width, intensity float64) float64 {
	return intensity * math.Exp(-math.Pow(hour-peakHour, 2)/(2*math.Pow(width, 2)))
}

func classifyExcess(factor float64) TrafficLevel {
	excessPct := (factor - 1.0) * 100
	switch {
	case excessPct > highTrafficExcessPct:
		return TrafficHigh
	case excessPct > mediumTrafficExcessPct:
		return TrafficMedium
	default:
		return TrafficLow
	}
}
