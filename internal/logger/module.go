package logger

import "go.uber.org/fx"

// Module wires the service logger into the fx container.
var Module = fx.Provide(New)
