package clock

import "go.uber.org/fx"

// Module provides the wall clock. Services depend on the Clock interface so
// report timestamps can be pinned in tests.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)

func NewSystemClock() Clock {
	return SystemClock{}
}
