package settings

import "go.uber.org/fx"

// Module provides the settings repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(Store))),
)
