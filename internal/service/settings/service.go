package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/config"
	repo "github.com/prg-dinamics/dynedu/internal/repository/settings"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/prg-dinamics/dynedu/service/settings")

// GeneralKey names the general settings document.
const GeneralKey = "general"

// General is the general settings document. Campaign year drives the school
// campaign the back office is operating; delivery days is the default lead
// time proposed for new orders.
type General struct {
	CampaniaAnio       int    `json:"campania_anio"`
	DiasEntregaDefecto int    `json:"dias_entrega_defecto"`
	NombreInstitucion  string `json:"nombre_institucion"`
}

// Service manages named settings documents, layering stored values over the
// configured defaults.
type Service struct {
	settings repo.Store
	defaults General
	actor    string
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Settings repo.Store
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		settings: p.Settings,
		defaults: General{
			CampaniaAnio:       p.Config.Campaign.Year,
			DiasEntregaDefecto: p.Config.Campaign.DefaultDeliveryDays,
		},
		actor:  p.Config.Campaign.Actor,
		logger: p.Logger,
	}
}

// General returns the general settings document. Missing documents and
// missing fields fall back to configured defaults, so a fresh database is
// usable before anything was ever saved.
func (s *Service) General(ctx context.Context) (General, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingsService.General")
	defer span.End()

	doc := s.defaults
	raw, err := s.settings.Get(ctx, GeneralKey)
	if errors.Is(err, repo.ErrNotFound) {
		return doc, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return General{}, errorbank.Internal("failed to load settings", errorbank.WithCause(err))
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("stored general settings are malformed, using defaults", zap.Error(err))
		return s.defaults, nil
	}
	if doc.CampaniaAnio == 0 {
		doc.CampaniaAnio = s.defaults.CampaniaAnio
	}
	if doc.DiasEntregaDefecto == 0 {
		doc.DiasEntregaDefecto = s.defaults.DiasEntregaDefecto
	}
	return doc, nil
}

// SaveGeneral validates and stores the general settings document.
func (s *Service) SaveGeneral(ctx context.Context, doc General) (General, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingsService.SaveGeneral")
	defer span.End()

	if doc.CampaniaAnio < 2000 {
		return General{}, errorbank.Validation(fmt.Sprintf("campania_anio %d is out of range", doc.CampaniaAnio))
	}
	if doc.DiasEntregaDefecto <= 0 {
		return General{}, errorbank.Validation("dias_entrega_defecto must be positive")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return General{}, errorbank.Internal("failed to encode settings", errorbank.WithCause(err))
	}
	if err := s.settings.Save(ctx, GeneralKey, raw, s.actor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return General{}, errorbank.Internal("failed to save settings", errorbank.WithCause(err))
	}
	return doc, nil
}
