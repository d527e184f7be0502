package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/prg-dinamics/dynedu/internal/transport/http/order"
	producttransport "github.com/prg-dinamics/dynedu/internal/transport/http/product"
	settingstransport "github.com/prg-dinamics/dynedu/internal/transport/http/settings"
	stocktransport "github.com/prg-dinamics/dynedu/internal/transport/http/stock"
	suppliertransport "github.com/prg-dinamics/dynedu/internal/transport/http/supplier"
	trackingtransport "github.com/prg-dinamics/dynedu/internal/transport/http/tracking"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	suppliertransport.Module,
	producttransport.Module,
	ordertransport.Module,
	trackingtransport.Module,
	stocktransport.Module,
	settingstransport.Module,
)
