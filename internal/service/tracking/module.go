package tracking

import "go.uber.org/fx"

// Module provides the tracking service to Fx.
var Module = fx.Provide(NewService)
