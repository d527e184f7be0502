package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	repo "github.com/prg-dinamics/dynedu/internal/repository/settings"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

type memSettings struct {
	docs      map[string]json.RawMessage
	updatedBy map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{
		docs:      map[string]json.RawMessage{},
		updatedBy: map[string]string{},
	}
}

func (m *memSettings) Get(_ context.Context, key string) (json.RawMessage, error) {
	doc, ok := m.docs[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return doc, nil
}

func (m *memSettings) Save(_ context.Context, key string, value json.RawMessage, updatedBy string) error {
	m.docs[key] = value
	m.updatedBy[key] = updatedBy
	return nil
}

var _ repo.Store = (*memSettings)(nil)

func newTestService() (*Service, *memSettings) {
	store := newMemSettings()
	svc := &Service{
		settings: store,
		defaults: General{CampaniaAnio: 2026, DiasEntregaDefecto: 7},
		actor:    "pedido-real",
		logger:   zap.NewNop(),
	}
	return svc, store
}

func TestGeneralFallsBackToDefaults(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.General(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2026, doc.CampaniaAnio)
	assert.Equal(t, 7, doc.DiasEntregaDefecto)
}

func TestSaveGeneralRoundTrip(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	saved, err := svc.SaveGeneral(ctx, General{
		CampaniaAnio:       2027,
		DiasEntregaDefecto: 10,
		NombreInstitucion:  "IE San Martín",
	})
	require.NoError(t, err)
	assert.Equal(t, 2027, saved.CampaniaAnio)
	assert.Equal(t, "pedido-real", store.updatedBy[GeneralKey])

	doc, err := svc.General(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2027, doc.CampaniaAnio)
	assert.Equal(t, 10, doc.DiasEntregaDefecto)
	assert.Equal(t, "IE San Martín", doc.NombreInstitucion)
}

func TestSaveGeneralValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SaveGeneral(ctx, General{CampaniaAnio: 1999, DiasEntregaDefecto: 7})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.SaveGeneral(ctx, General{CampaniaAnio: 2026, DiasEntregaDefecto: 0})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestGeneralPartialDocumentMergesDefaults(t *testing.T) {
	svc, store := newTestService()

	store.docs[GeneralKey] = json.RawMessage(`{"campania_anio": 2028}`)

	doc, err := svc.General(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2028, doc.CampaniaAnio)
	assert.Equal(t, 7, doc.DiasEntregaDefecto)
}

func TestGeneralMalformedDocumentUsesDefaults(t *testing.T) {
	svc, store := newTestService()

	store.docs[GeneralKey] = json.RawMessage(`not-json`)

	doc, err := svc.General(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2026, doc.CampaniaAnio)
}
