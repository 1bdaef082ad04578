package weather

import (
	"context"
	"time"
)

// Report is a weather observation reduced to what routing needs: a named
// condition and a multiplicative speed factor in (0, 1]. Weather only ever
// slows a rider down.
type Report struct {
	Condition   string  `json:"condition"`
	SpeedFactor float64 `json:"speed_factor"`
}

// Neutral is the report applied when no weather source is reachable.
func Neutral() Report {
	return Report{Condition: "clear", SpeedFactor: 1.0}
}

// Adjuster supplies the speed factor for a position at the current time.
type Adjuster interface {
	Factor(ctx context.Context, lat, lon float64) (Report, error)
}

// Simulator is the deterministic fallback source: conditions rotate on a
// fixed wall-clock schedule, fifteen minutes per condition.
type Simulator struct {
	now func() time.Time
}

func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

var conditions = []Report{
	{Condition: "clear", SpeedFactor: 1.0},
	{Condition: "windy", SpeedFactor: 0.9},
	{Condition: "rain", SpeedFactor: 0.8},
	{Condition: "heavy_rain", SpeedFactor: 0.7},
}

const conditionPeriod = 15 * time.Minute

func (s *Simulator) Factor(_ context.Context, _, _ float64) (Report, error) {
	period := int64(conditionPeriod.Seconds())
	t := s.now().Unix() % (period * int64(len(conditions)))
	return conditions[t/period], nil
}
