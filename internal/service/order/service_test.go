package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/config"
	"github.com/prg-dinamics/dynedu/internal/entity"
	"github.com/prg-dinamics/dynedu/internal/messaging"
	catalogrepo "github.com/prg-dinamics/dynedu/internal/repository/catalog"
	repo "github.com/prg-dinamics/dynedu/internal/repository/order"
	trackingrepo "github.com/prg-dinamics/dynedu/internal/repository/tracking"
	"github.com/prg-dinamics/dynedu/internal/sequence"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

type memTracking struct {
	events []entity.TrackingEvent
	nextID int64
}

func (m *memTracking) Append(_ context.Context, event *entity.TrackingEvent) error {
	m.nextID++
	event.ID = m.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memTracking) Timeline(_ context.Context, orderID int64) ([]entity.TrackingEvent, error) {
	var out []entity.TrackingEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].PedidoID == orderID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *memTracking) Summaries(context.Context) ([]trackingrepo.OrderSummary, error) {
	return nil, nil
}

func (m *memTracking) HasFinalEvent(_ context.Context, orderID int64) (bool, error) {
	for i := range m.events {
		if m.events[i].PedidoID == orderID && m.events[i].FinalEvent() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTracking) byOrder(orderID int64) []entity.TrackingEvent {
	var out []entity.TrackingEvent
	for _, e := range m.events {
		if e.PedidoID == orderID {
			out = append(out, e)
		}
	}
	return out
}

type memCatalog struct {
	suppliers map[int64]entity.Supplier
	products  map[int64]entity.Product
}

func newMemCatalog() *memCatalog {
	editorial := "Santillana"
	return &memCatalog{
		suppliers: map[int64]entity.Supplier{
			1: {ID: 1, InternalID: "PRV0001", RazonSocial: "Distribuidora Andina SAC", RUC: "20504567891"},
			2: {ID: 2, InternalID: "PRV0002", RazonSocial: "Ediciones Corefo SA", RUC: "20101234567"},
		},
		products: map[int64]entity.Product{
			10: {ID: 10, InternalID: "PRO0001", Descripcion: "Matemática 5to grado", Editorial: &editorial},
			11: {ID: 11, InternalID: "PRO0002", Descripcion: "Comunicación 5to grado", Editorial: &editorial},
		},
	}
}

func (m *memCatalog) ListSuppliers(context.Context) ([]entity.Supplier, error) { return nil, nil }

func (m *memCatalog) GetSupplier(_ context.Context, id int64) (*entity.Supplier, error) {
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, catalogrepo.ErrNotFound
	}
	return &supplier, nil
}

func (m *memCatalog) CreateSupplier(context.Context, *entity.Supplier) error { return nil }
func (m *memCatalog) UpdateSupplier(context.Context, *entity.Supplier) error { return nil }
func (m *memCatalog) DeleteSupplier(context.Context, int64) error            { return nil }
func (m *memCatalog) ListProducts(context.Context) ([]entity.Product, error) { return nil, nil }

func (m *memCatalog) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, catalogrepo.ErrNotFound
	}
	return &product, nil
}

func (m *memCatalog) ProductsByIDs(_ context.Context, ids []int64) ([]entity.Product, error) {
	var out []entity.Product
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if product, ok := m.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (m *memCatalog) CreateProduct(context.Context, *entity.Product) error { return nil }
func (m *memCatalog) UpdateProduct(context.Context, *entity.Product) error { return nil }
func (m *memCatalog) DeleteProduct(context.Context, int64) error           { return nil }

// memOrders mirrors the transactional store semantics in memory: the closed
// guards, line replacement, and finalization side effects all behave as the
// real repository does.
type memOrders struct {
	orders   map[int64]*entity.Order
	items    map[int64][]entity.OrderItem
	tracking *memTracking
	stock    map[int64]int
	nextID   int64
	nextItem int64
}

func newMemOrders(tracking *memTracking) *memOrders {
	return &memOrders{
		orders:   map[int64]*entity.Order{},
		items:    map[int64][]entity.OrderItem{},
		tracking: tracking,
		stock:    map[int64]int{},
	}
}

func (m *memOrders) Create(_ context.Context, header *entity.Order, items []entity.OrderItem) error {
	var max string
	for _, o := range m.orders {
		if o.Codigo > max {
			max = o.Codigo
		}
	}
	m.nextID++
	header.ID = m.nextID
	header.Codigo = sequence.Next(repo.CodePrefix, max)
	header.UnidadesRecibidas = 0
	header.UnidadesSolicitadas = 0
	for i := range items {
		header.UnidadesSolicitadas += items[i].CantidadSolicitada
	}
	header.CreatedAt = time.Now().UTC()

	stored := *header
	m.orders[header.ID] = &stored
	for i := range items {
		m.nextItem++
		items[i].ID = m.nextItem
		items[i].PedidoID = header.ID
	}
	m.items[header.ID] = append([]entity.OrderItem(nil), items...)
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	header, ok := m.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *header
	return &copied, nil
}

func (m *memOrders) GetDetail(ctx context.Context, id int64) (*entity.Order, []entity.OrderItem, error) {
	header, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return header, append([]entity.OrderItem(nil), m.items[id]...), nil
}

func (m *memOrders) List(context.Context) ([]entity.Order, error) {
	var out []entity.Order
	for id := int64(1); id <= m.nextID; id++ {
		if header, ok := m.orders[id]; ok {
			out = append(out, *header)
		}
	}
	return out, nil
}

func (m *memOrders) ReplaceLines(_ context.Context, orderID int64, items []entity.OrderItem) (*entity.Order, error) {
	header, ok := m.orders[orderID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if header.Closed() {
		return nil, repo.ErrClosed
	}
	total := 0
	for i := range items {
		m.nextItem++
		items[i].ID = m.nextItem
		items[i].PedidoID = orderID
		total += items[i].CantidadSolicitada
	}
	m.items[orderID] = append([]entity.OrderItem(nil), items...)
	header.UnidadesSolicitadas = total
	header.UpdatedAt = time.Now().UTC()
	copied := *header
	return &copied, nil
}

func (m *memOrders) UpdateHeader(_ context.Context, orderID int64, changes repo.HeaderChanges) (*entity.Order, *entity.Order, error) {
	header, ok := m.orders[orderID]
	if !ok {
		return nil, nil, repo.ErrNotFound
	}
	if header.Closed() {
		return nil, nil, repo.ErrClosed
	}
	prev := *header
	header.ProveedorID = changes.ProveedorID
	header.ProveedorNombre = changes.ProveedorNombre
	header.DocRef = changes.DocRef
	header.Estado = changes.Estado
	if changes.SetFechaEntrega {
		header.FechaEntrega = changes.FechaEntrega
	}
	header.UpdatedAt = time.Now().UTC()
	updated := *header
	return &prev, &updated, nil
}

func (m *memOrders) ApplyReceipts(ctx context.Context, app repo.ReceiptApplication) (*entity.Order, error) {
	header, ok := m.orders[app.OrderID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	finalized, err := m.tracking.HasFinalEvent(ctx, app.OrderID)
	if err != nil {
		return nil, err
	}
	if finalized {
		return nil, repo.ErrClosed
	}

	items := m.items[app.OrderID]
	for _, receipt := range app.Receipts {
		for i := range items {
			if items[i].ID == receipt.ItemID {
				items[i].CantidadRecibida = receipt.Recibida
			}
		}
	}

	header.UnidadesRecibidas = app.UnidadesRecibidas
	header.Estado = app.Estado
	header.UpdatedAt = app.Now
	if app.Finalize && header.FechaEntrega == nil {
		now := app.Now
		header.FechaEntrega = &now
	}

	if app.Finalize {
		if app.Event != nil {
			if err := m.tracking.Append(ctx, app.Event); err != nil {
				return nil, err
			}
		}
		for _, accrual := range app.Accruals {
			m.stock[accrual.ProductoID] += accrual.Cantidad
		}
	}

	copied := *header
	return &copied, nil
}

func (m *memOrders) Delete(ctx context.Context, orderID int64) error {
	header, ok := m.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if header.Closed() {
		return repo.ErrClosed
	}
	finalized, err := m.tracking.HasFinalEvent(ctx, orderID)
	if err != nil {
		return err
	}
	if finalized {
		return repo.ErrFinalized
	}
	delete(m.orders, orderID)
	delete(m.items, orderID)
	return nil
}

var _ repo.Store = (*memOrders)(nil)

type capturePublisher struct {
	values [][]byte
}

func (c *capturePublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	c.values = append(c.values, value)
	return nil
}

func (c *capturePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *capturePublisher) Topic() string { return "pedidos.events" }

func (c *capturePublisher) envelopes(t *testing.T) []Envelope {
	t.Helper()
	out := make([]Envelope, 0, len(c.values))
	for _, value := range c.values {
		var env Envelope
		require.NoError(t, json.Unmarshal(value, &env))
		out = append(out, env)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memOrders, *memTracking, *capturePublisher) {
	t.Helper()
	tracking := &memTracking{}
	orders := newMemOrders(tracking)
	publisher := &capturePublisher{}

	cfg := config.Config{}
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Messaging.Enabled = true
	cfg.Messaging.Kafka.Topic = "pedidos.events"
	cfg.Campaign.Actor = "pedido-real"

	svc := &Service{
		orders:    orders,
		catalog:   newMemCatalog(),
		tracking:  tracking,
		logger:    zap.NewNop(),
		publisher: publisher,
		messaging: messagingConfig{enabled: true, topic: cfg.Messaging.Kafka.Topic},
		actor:     cfg.Campaign.Actor,
		cacheTTL:  cfg.Cache.DefaultTTL,
	}
	return svc, orders, tracking, publisher
}

func createOrder(t *testing.T, svc *Service, lineas []LineInput) *entity.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateInput{ProveedorID: 1, Lineas: lineas})
	require.NoError(t, err)
	return order
}

func TestCreateDefaultsAndSnapshots(t *testing.T) {
	svc, _, _, publisher := newTestService(t)

	docRef := "FAC-001"
	order, err := svc.Create(context.Background(), CreateInput{
		ProveedorID: 1,
		DocRef:      &docRef,
		Lineas: []LineInput{
			{ProductoID: 10, Cantidad: 10},
			{ProductoID: 11, Cantidad: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "PED0001", order.Codigo)
	assert.Equal(t, entity.EstadoPendiente, order.Estado)
	assert.Equal(t, "Distribuidora Andina SAC", order.ProveedorNombre)
	assert.Equal(t, 15, order.UnidadesSolicitadas)
	assert.Equal(t, 0, order.UnidadesRecibidas)

	_, items, err := svc.Detail(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Matemática 5to grado", items[0].ProductoDescripcion)

	envelopes := publisher.envelopes(t)
	require.Len(t, envelopes, 1)
	assert.Equal(t, EventKindCreated, envelopes[0].Kind)

	second := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 1}})
	assert.Equal(t, "PED0002", second.Codigo)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
		kind  errorbank.Kind
	}{
		{
			name:  "completo is not a creation status",
			input: CreateInput{ProveedorID: 1, Estado: entity.EstadoCompleto, Lineas: []LineInput{{ProductoID: 10, Cantidad: 1}}},
			kind:  errorbank.KindValidation,
		},
		{
			name:  "unknown supplier",
			input: CreateInput{ProveedorID: 99, Lineas: []LineInput{{ProductoID: 10, Cantidad: 1}}},
			kind:  errorbank.KindValidation,
		},
		{
			name:  "unknown product",
			input: CreateInput{ProveedorID: 1, Lineas: []LineInput{{ProductoID: 99, Cantidad: 1}}},
			kind:  errorbank.KindValidation,
		},
		{
			name:  "non-positive quantity",
			input: CreateInput{ProveedorID: 1, Lineas: []LineInput{{ProductoID: 10, Cantidad: 0}}},
			kind:  errorbank.KindValidation,
		},
		{
			name:  "empty line set",
			input: CreateInput{ProveedorID: 1},
			kind:  errorbank.KindValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, errorbank.IsKind(err, tc.kind))
		})
	}
}

func TestRecordReceiptsLifecycle(t *testing.T) {
	svc, orders, tracking, publisher := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{
		{ProductoID: 10, Cantidad: 10},
		{ProductoID: 11, Cantidad: 5},
	})
	_, items, err := svc.Detail(ctx, order.ID)
	require.NoError(t, err)

	// Partial receipt without finalizing: provisional status only.
	updated, err := svc.RecordReceipts(ctx, order.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: 4}}, false)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoParcial, updated.Estado)
	assert.Equal(t, 4, updated.UnidadesRecibidas)
	assert.Empty(t, tracking.byOrder(order.ID), "no ledger event before finalization")

	// Finalize with a shortage on the second line.
	updated, err = svc.RecordReceipts(ctx, order.ID, []ReceiptInput{
		{ItemID: items[0].ID, Recibida: 10},
		{ItemID: items[1].ID, Recibida: 2},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoParcial, updated.Estado)
	assert.Equal(t, 12, updated.UnidadesRecibidas)
	require.NotNil(t, updated.FechaEntrega)

	events := tracking.byOrder(order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventoFinalizadoFaltante, events[0].TipoEvento)

	var detail FinalDetail
	require.NoError(t, json.Unmarshal([]byte(events[0].Detalle), &detail))
	assert.Equal(t, 3, detail.TotalFaltante)
	assert.Equal(t, 0, detail.TotalExcedente)
	require.Len(t, detail.Detalle, 2)
	assert.Equal(t, "PRO0001", detail.Detalle[0].Codigo)

	assert.Equal(t, 10, orders.stock[10])
	assert.Equal(t, 2, orders.stock[11])

	envelopes := publisher.envelopes(t)
	require.Len(t, envelopes, 2)
	assert.Equal(t, EventKindFinalized, envelopes[1].Kind)

	// The ledger now closes the order to everything.
	_, err = svc.RecordReceipts(ctx, order.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: 10}}, false)
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))

	_, err = svc.Comment(ctx, order.ID, "llegó tarde")
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))

	err = svc.Delete(ctx, order.ID)
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))
}

func TestFinalizeExactMatchCompletes(t *testing.T) {
	svc, _, tracking, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 8}})
	_, items, err := svc.Detail(ctx, order.ID)
	require.NoError(t, err)

	updated, err := svc.RecordReceipts(ctx, order.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: 8}}, true)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCompleto, updated.Estado)

	events := tracking.byOrder(order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventoFinalizado, events[0].TipoEvento)
}

func TestOffsettingDeltasDivergeProvisionalAndFinal(t *testing.T) {
	svc, _, tracking, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{
		{ProductoID: 10, Cantidad: 5},
		{ProductoID: 11, Cantidad: 5},
	})
	_, items, err := svc.Detail(ctx, order.ID)
	require.NoError(t, err)

	receipts := []ReceiptInput{
		{ItemID: items[0].ID, Recibida: 7},
		{ItemID: items[1].ID, Recibida: 3},
	}

	// Totals match, so the provisional status says COMPLETO and the order
	// stays open.
	updated, err := svc.RecordReceipts(ctx, order.ID, receipts, false)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCompleto, updated.Estado)
	assert.Empty(t, tracking.byOrder(order.ID))

	// Finalization reconciles per line: the surplus cannot cancel the
	// shortage.
	updated, err = svc.RecordReceipts(ctx, order.ID, receipts, true)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoParcial, updated.Estado)

	events := tracking.byOrder(order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventoFinalizadoFaltante, events[0].TipoEvento)

	var detail FinalDetail
	require.NoError(t, json.Unmarshal([]byte(events[0].Detalle), &detail))
	assert.Equal(t, 2, detail.TotalFaltante)
	assert.Equal(t, 2, detail.TotalExcedente)
}

func TestStockAccruesAcrossOrders(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	first := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})
	_, items, err := svc.Detail(ctx, first.ID)
	require.NoError(t, err)
	_, err = svc.RecordReceipts(ctx, first.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: 5}}, true)
	require.NoError(t, err)

	second := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 3}})
	_, items, err = svc.Detail(ctx, second.ID)
	require.NoError(t, err)
	_, err = svc.RecordReceipts(ctx, second.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: 3}}, true)
	require.NoError(t, err)

	assert.Equal(t, 8, orders.stock[10])
}

func TestRecordReceiptsValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})
	_, items, err := svc.Detail(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.RecordReceipts(ctx, order.ID, nil, false)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.RecordReceipts(ctx, order.ID, []ReceiptInput{{ItemID: items[0].ID, Recibida: -1}}, false)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.RecordReceipts(ctx, order.ID, []ReceiptInput{{ItemID: 9999, Recibida: 1}}, false)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.RecordReceipts(ctx, 9999, []ReceiptInput{{ItemID: items[0].ID, Recibida: 1}}, false)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestUpdateHeaderAppendsDiffEvent(t *testing.T) {
	svc, _, tracking, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})

	docRef := "GUIA-042"
	updated, err := svc.UpdateHeader(ctx, order.ID, UpdateHeaderInput{
		ProveedorID: 2,
		DocRef:      &docRef,
		Estado:      entity.EstadoPendiente,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ediciones Corefo SA", updated.ProveedorNombre)

	events := tracking.byOrder(order.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventoActualizarPedido, events[0].TipoEvento)
	assert.Contains(t, events[0].Detalle, "Cambio de Doc Ref: — → GUIA-042")

	// COMPLETO can only come from finalization.
	_, err = svc.UpdateHeader(ctx, order.ID, UpdateHeaderInput{
		ProveedorID: 1,
		Estado:      entity.EstadoCompleto,
	})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestUpdateHeaderWithoutChangesSkipsEvent(t *testing.T) {
	svc, _, tracking, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})

	_, err := svc.UpdateHeader(ctx, order.ID, UpdateHeaderInput{
		ProveedorID: 1,
		Estado:      entity.EstadoPendiente,
	})
	require.NoError(t, err)
	assert.Empty(t, tracking.byOrder(order.ID))
}

func TestReplaceLinesReplacesNotAppends(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})

	updated, err := svc.ReplaceLines(ctx, order.ID, []LineInput{
		{ProductoID: 10, Cantidad: 2},
		{ProductoID: 11, Cantidad: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.UnidadesSolicitadas)

	_, items, err := svc.Detail(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].CantidadSolicitada)

	// Closed orders refuse line edits.
	orders.orders[order.ID].Estado = entity.EstadoCompleto
	_, err = svc.ReplaceLines(ctx, order.ID, []LineInput{{ProductoID: 10, Cantidad: 1}})
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))
}

func TestCommentAppendsNota(t *testing.T) {
	svc, _, tracking, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})

	event, err := svc.Comment(ctx, order.ID, "  el proveedor confirmó la entrega  ")
	require.NoError(t, err)
	assert.Equal(t, entity.EventoNota, event.TipoEvento)
	assert.Equal(t, "el proveedor confirmó la entrega", event.Detalle)
	assert.Len(t, tracking.byOrder(order.ID), 1)

	_, err = svc.Comment(ctx, order.ID, "   ")
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.Comment(ctx, 9999, "hola")
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestDeleteOpenOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	order := createOrder(t, svc, []LineInput{{ProductoID: 10, Cantidad: 5}})

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err := svc.Get(ctx, order.ID)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	err = svc.Delete(ctx, 9999)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}
