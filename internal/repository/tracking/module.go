package tracking

import "go.uber.org/fx"

// Module provides the tracking repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(Store))),
)
