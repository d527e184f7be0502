package app

import (
	"go.uber.org/fx"

	"github.com/prg-dinamics/dynedu/internal/cache"
	"github.com/prg-dinamics/dynedu/internal/config"
	"github.com/prg-dinamics/dynedu/internal/database"
	"github.com/prg-dinamics/dynedu/internal/logger"
	"github.com/prg-dinamics/dynedu/internal/messaging"
	"github.com/prg-dinamics/dynedu/internal/observability"
	repositorycatalog "github.com/prg-dinamics/dynedu/internal/repository/catalog"
	repositoryorder "github.com/prg-dinamics/dynedu/internal/repository/order"
	repositorysettings "github.com/prg-dinamics/dynedu/internal/repository/settings"
	repositorystock "github.com/prg-dinamics/dynedu/internal/repository/stock"
	repositorytracking "github.com/prg-dinamics/dynedu/internal/repository/tracking"
	httpserver "github.com/prg-dinamics/dynedu/internal/server/http"
	servicecatalog "github.com/prg-dinamics/dynedu/internal/service/catalog"
	serviceinventory "github.com/prg-dinamics/dynedu/internal/service/inventory"
	serviceorder "github.com/prg-dinamics/dynedu/internal/service/order"
	servicesettings "github.com/prg-dinamics/dynedu/internal/service/settings"
	servicetracking "github.com/prg-dinamics/dynedu/internal/service/tracking"
	transporthttp "github.com/prg-dinamics/dynedu/internal/transport/http"
	"github.com/prg-dinamics/dynedu/internal/worker"
	workerorder "github.com/prg-dinamics/dynedu/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	repositorysettings.Module,
	repositorystock.Module,
	repositorytracking.Module,
	servicecatalog.Module,
	serviceinventory.Module,
	serviceorder.Module,
	servicesettings.Module,
	servicetracking.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
