package stock

import "go.uber.org/fx"

// Module provides the stock repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(Store))),
)
