package router

import "go.uber.org/fx"

// Module registers HTTP router construction with the fx runtime.
var Module = fx.Provide(Setup)
