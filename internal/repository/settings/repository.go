package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/database"
	"github.com/prg-dinamics/dynedu/internal/entity"
)

var repoTracer = otel.Tracer("github.com/prg-dinamics/dynedu/repository/settings")

// ErrNotFound is returned when no document exists under a settings key.
var ErrNotFound = errors.New("setting not found")

// Store persists named JSON settings documents.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Save(ctx context.Context, key string, value json.RawMessage, updatedBy string) error
}

// Repository is the bun-backed settings store.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

var _ Store = (*Repository)(nil)

// Get returns the raw JSON document stored under key.
func (r *Repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	ctx, span := repoTracer.Start(ctx, "SettingsRepository.Get", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	setting := new(entity.Setting)
	err := r.reader.NewSelect().Model(setting).Where("setting_key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return setting.Value, nil
}

// Save upserts the document under key, stamping updated_at/by.
func (r *Repository) Save(ctx context.Context, key string, value json.RawMessage, updatedBy string) error {
	ctx, span := repoTracer.Start(ctx, "SettingsRepository.Save", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	setting := &entity.Setting{
		SettingKey: key,
		Value:      value,
		UpdatedAt:  time.Now().UTC(),
	}
	if updatedBy != "" {
		setting.UpdatedBy = &updatedBy
	}

	_, err := r.writer.NewInsert().Model(setting).
		On("CONFLICT (setting_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Set("updated_by = EXCLUDED.updated_by").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return err
}
