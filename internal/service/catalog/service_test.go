package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/entity"
	repo "github.com/prg-dinamics/dynedu/internal/repository/catalog"
	"github.com/prg-dinamics/dynedu/internal/sequence"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

type memCatalog struct {
	suppliers map[int64]*entity.Supplier
	products  map[int64]*entity.Product
	nextID    int64
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		suppliers: map[int64]*entity.Supplier{},
		products:  map[int64]*entity.Product{},
	}
}

func (m *memCatalog) ListSuppliers(context.Context) ([]entity.Supplier, error) {
	var out []entity.Supplier
	for id := int64(1); id <= m.nextID; id++ {
		if supplier, ok := m.suppliers[id]; ok {
			out = append(out, *supplier)
		}
	}
	return out, nil
}

func (m *memCatalog) GetSupplier(_ context.Context, id int64) (*entity.Supplier, error) {
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *supplier
	return &copied, nil
}

func (m *memCatalog) CreateSupplier(_ context.Context, supplier *entity.Supplier) error {
	var max string
	for _, s := range m.suppliers {
		if s.InternalID > max {
			max = s.InternalID
		}
	}
	m.nextID++
	supplier.ID = m.nextID
	supplier.InternalID = sequence.Next(repo.SupplierPrefix, max)
	stored := *supplier
	m.suppliers[supplier.ID] = &stored
	return nil
}

func (m *memCatalog) UpdateSupplier(_ context.Context, supplier *entity.Supplier) error {
	if _, ok := m.suppliers[supplier.ID]; !ok {
		return repo.ErrNotFound
	}
	stored := *supplier
	m.suppliers[supplier.ID] = &stored
	return nil
}

func (m *memCatalog) DeleteSupplier(_ context.Context, id int64) error {
	if _, ok := m.suppliers[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

func (m *memCatalog) ListProducts(context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for id := int64(1); id <= m.nextID; id++ {
		if product, ok := m.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (m *memCatalog) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *memCatalog) ProductsByIDs(_ context.Context, ids []int64) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if product, ok := m.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (m *memCatalog) CreateProduct(_ context.Context, product *entity.Product) error {
	var max string
	for _, p := range m.products {
		if p.InternalID > max {
			max = p.InternalID
		}
	}
	m.nextID++
	product.ID = m.nextID
	product.InternalID = sequence.Next(repo.ProductPrefix, max)
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *memCatalog) UpdateProduct(_ context.Context, product *entity.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repo.ErrNotFound
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *memCatalog) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

var _ repo.Store = (*memCatalog)(nil)

func newTestService() (*Service, *memCatalog) {
	store := newMemCatalog()
	return &Service{catalog: store, logger: zap.NewNop()}, store
}

func TestCreateSupplierAllocatesSequence(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateSupplier(ctx, SupplierInput{RazonSocial: "  Distribuidora Andina SAC ", RUC: "20504567891"})
	require.NoError(t, err)
	assert.Equal(t, "PRV0001", first.InternalID)
	assert.Equal(t, "Distribuidora Andina SAC", first.RazonSocial)

	second, err := svc.CreateSupplier(ctx, SupplierInput{RazonSocial: "Ediciones Corefo SA", RUC: "20101234567"})
	require.NoError(t, err)
	assert.Equal(t, "PRV0002", second.InternalID)
}

func TestCreateSupplierValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateSupplier(ctx, SupplierInput{RUC: "20504567891"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.CreateSupplier(ctx, SupplierInput{RazonSocial: "Distribuidora"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestUpdateSupplierKeepsSequenceCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSupplier(ctx, SupplierInput{RazonSocial: "Distribuidora Andina SAC", RUC: "20504567891"})
	require.NoError(t, err)

	updated, err := svc.UpdateSupplier(ctx, created.ID, SupplierInput{RazonSocial: "Distribuidora Andina SAC", RUC: "20999999999"})
	require.NoError(t, err)
	assert.Equal(t, "PRV0001", updated.InternalID)
	assert.Equal(t, "20999999999", updated.RUC)

	_, err = svc.UpdateSupplier(ctx, 9999, SupplierInput{RazonSocial: "x", RUC: "y"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestProductLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{Descripcion: "Matemática 5to grado"})
	require.NoError(t, err)
	assert.Equal(t, "PRO0001", created.InternalID)

	_, err = svc.CreateProduct(ctx, ProductInput{})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.CreateProduct(ctx, ProductInput{Descripcion: "Cuaderno", Stock: -1})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	err = svc.DeleteProduct(ctx, created.ID)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}
