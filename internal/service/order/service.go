package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/cache"
	"github.com/prg-dinamics/dynedu/internal/config"
	"github.com/prg-dinamics/dynedu/internal/entity"
	"github.com/prg-dinamics/dynedu/internal/messaging"
	"github.com/prg-dinamics/dynedu/internal/reconcile"
	catalogrepo "github.com/prg-dinamics/dynedu/internal/repository/catalog"
	repo "github.com/prg-dinamics/dynedu/internal/repository/order"
	stockrepo "github.com/prg-dinamics/dynedu/internal/repository/stock"
	trackingrepo "github.com/prg-dinamics/dynedu/internal/repository/tracking"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/prg-dinamics/dynedu/service/order")

// Service is the order lifecycle orchestrator. It validates commands against
// the catalog, runs reconciliation, and delegates the atomic writes to the
// order repository.
type Service struct {
	orders    repo.Store
	catalog   catalogrepo.Store
	tracking  trackingrepo.Store
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	actor     string
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    repo.Store
	Catalog   catalogrepo.Store
	Tracking  trackingrepo.Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:    p.Orders,
		catalog:   p.Catalog,
		tracking:  p.Tracking,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		actor: p.Config.Campaign.Actor,
	}
}

// LineInput is one requested product/quantity pair for a new line set.
type LineInput struct {
	ProductoID int64
	Cantidad   int
}

// CreateInput carries a create-order command.
type CreateInput struct {
	ProveedorID  int64
	DocRef       *string
	Estado       string
	FechaEntrega *time.Time
	Lineas       []LineInput
}

// UpdateHeaderInput carries a header-edit command.
type UpdateHeaderInput struct {
	ProveedorID int64
	DocRef      *string
	Estado      string
	// FechaEntrega is applied only when SetFechaEntrega is true.
	FechaEntrega    *time.Time
	SetFechaEntrega bool
}

// ReceiptInput records the received quantity for one order line.
type ReceiptInput struct {
	ItemID   int64
	Recibida int
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.orders.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Get retrieves an order header by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
	}

	return order, nil
}

// Detail retrieves the header and its lines.
func (s *Service) Detail(ctx context.Context, id int64) (*entity.Order, []entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Detail", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	header, items, err := s.orders.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, nil, errorbank.Internal("failed to load order detail", errorbank.WithCause(err))
	}
	return header, items, nil
}

// Create validates the supplier and products, snapshots their names onto the
// new order, and persists header plus lines as one unit. COMPLETO is never a
// valid creation status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("supplier.id", input.ProveedorID)))
	defer span.End()

	estado := input.Estado
	if estado == "" {
		estado = entity.EstadoPendiente
	}
	if estado != entity.EstadoPendiente && estado != entity.EstadoParcial {
		return nil, errorbank.Validation(fmt.Sprintf("estado %q is not a valid creation status", estado))
	}

	supplier, err := s.catalog.GetSupplier(ctx, input.ProveedorID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, errorbank.Validation("unknown supplier", errorbank.WithDetail("proveedor_id", input.ProveedorID))
		}
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}

	items, err := s.buildItems(ctx, input.Lineas)
	if err != nil {
		return nil, err
	}

	header := &entity.Order{
		ProveedorID:     supplier.ID,
		ProveedorNombre: supplier.RazonSocial,
		FechaRegistro:   time.Now().UTC(),
		FechaEntrega:    input.FechaEntrega,
		Estado:          estado,
		DocRef:          input.DocRef,
	}

	if err := s.orders.Create(ctx, header, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, header); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", header.ID), zap.Error(err))
	}

	s.publish(ctx, header.ID, CreatedEvent{
		ID:              header.ID,
		Codigo:          header.Codigo,
		ProveedorNombre: header.ProveedorNombre,
		Estado:          header.Estado,
		Unidades:        header.UnidadesSolicitadas,
		CreatedAt:       header.CreatedAt,
	})

	return header, nil
}

// ReplaceLines swaps the order's requested line set. Saving lines twice
// replaces the previous batch instead of appending to it.
func (s *Service) ReplaceLines(ctx context.Context, orderID int64, lineas []LineInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ReplaceLines", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	items, err := s.buildItems(ctx, lineas)
	if err != nil {
		return nil, err
	}

	header, err := s.orders.ReplaceLines(ctx, orderID, items)
	if err != nil {
		return nil, s.mapOrderError(span, err, "failed to replace lines")
	}

	s.invalidateCache(ctx, orderID)
	return header, nil
}

// UpdateHeader edits the header while the order is still PENDIENTE. When any
// of status, doc reference or delivery date changed, an ACTUALIZAR_PEDIDO
// event summarizing the delta is appended to the ledger.
func (s *Service) UpdateHeader(ctx context.Context, orderID int64, input UpdateHeaderInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateHeader", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	// Closure is owned by finalization; a header edit cannot fabricate it.
	if input.Estado != entity.EstadoPendiente && input.Estado != entity.EstadoParcial {
		return nil, errorbank.Validation(fmt.Sprintf("estado %q cannot be set from a header edit", input.Estado))
	}

	supplier, err := s.catalog.GetSupplier(ctx, input.ProveedorID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, errorbank.Validation("unknown supplier", errorbank.WithDetail("proveedor_id", input.ProveedorID))
		}
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}

	prev, updated, err := s.orders.UpdateHeader(ctx, orderID, repo.HeaderChanges{
		ProveedorID:     supplier.ID,
		ProveedorNombre: supplier.RazonSocial,
		DocRef:          input.DocRef,
		Estado:          input.Estado,
		FechaEntrega:    input.FechaEntrega,
		SetFechaEntrega: input.SetFechaEntrega,
	})
	if err != nil {
		return nil, s.mapOrderError(span, err, "failed to update order")
	}

	if detalle := headerDiff(prev, updated); detalle != "" {
		event := &entity.TrackingEvent{
			PedidoID:   orderID,
			TipoEvento: entity.EventoActualizarPedido,
			Detalle:    detalle,
		}
		if err := s.tracking.Append(ctx, event); err != nil {
			// The edit is already committed; losing the informational
			// event must not fail the request.
			s.logger.Warn("tracking append failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	s.invalidateCache(ctx, orderID)
	return updated, nil
}

// RecordReceipts updates received quantities and derives the order status.
// With finalizar=true it closes the order: the finalization event and the
// stock accrual are applied atomically with the status transition, making
// the accrual at-most-once per order.
func (s *Service) RecordReceipts(ctx context.Context, orderID int64, receipts []ReceiptInput, finalizar bool) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.RecordReceipts", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Bool("order.finalize", finalizar),
	))
	defer span.End()

	if len(receipts) == 0 {
		return nil, errorbank.Validation("at least one receipt is required")
	}
	for _, r := range receipts {
		if r.Recibida < 0 {
			return nil, errorbank.Validation("received quantity cannot be negative", errorbank.WithDetail("item_id", r.ItemID))
		}
	}

	header, items, err := s.orders.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order detail", errorbank.WithCause(err))
	}

	// Outer guard; the repository re-checks inside the transaction since
	// the state may have moved between this read and the write.
	finalized, err := s.tracking.HasFinalEvent(ctx, orderID)
	if err != nil {
		return nil, errorbank.Internal("failed to check order ledger", errorbank.WithCause(err))
	}
	if finalized {
		return nil, errorbank.Conflict("order is closed", errorbank.WithDetail("codigo", header.Codigo))
	}

	byItem := make(map[int64]int, len(receipts))
	for _, r := range receipts {
		byItem[r.ItemID] = r.Recibida
	}

	itemByID := make(map[int64]*entity.OrderItem, len(items))
	for i := range items {
		itemByID[items[i].ID] = &items[i]
	}
	for itemID := range byItem {
		if _, ok := itemByID[itemID]; !ok {
			return nil, errorbank.Validation("receipt references a line outside this order", errorbank.WithDetail("item_id", itemID))
		}
	}

	// Lines without an explicit receipt keep their current quantity.
	lines := make([]reconcile.Line, 0, len(items))
	applied := make([]repo.ItemReceipt, 0, len(receipts))
	for _, item := range items {
		recibida := item.CantidadRecibida
		if v, ok := byItem[item.ID]; ok {
			recibida = v
			applied = append(applied, repo.ItemReceipt{ItemID: item.ID, Recibida: v})
		}
		lines = append(lines, reconcile.Line{
			ProductoID: item.ProductoID,
			Solicitada: item.CantidadSolicitada,
			Recibida:   recibida,
		})
	}
	summary := reconcile.Summarize(lines)

	now := time.Now().UTC()
	app := repo.ReceiptApplication{
		OrderID:           orderID,
		Receipts:          applied,
		UnidadesRecibidas: summary.TotalRecibida,
		Finalize:          finalizar,
		Actor:             s.actor,
		Now:               now,
	}

	if finalizar {
		app.Estado = reconcile.FinalEstado(summary)
		event, err := s.buildFinalEvent(ctx, orderID, items, summary, now)
		if err != nil {
			return nil, err
		}
		app.Event = event
		for _, line := range summary.Lines {
			if line.Recibida > 0 {
				app.Accruals = append(app.Accruals, stockrepo.Accrual{ProductoID: line.ProductoID, Cantidad: line.Recibida})
			}
		}
	} else {
		app.Estado = reconcile.ProvisionalEstado(summary.TotalSolicitada, summary.TotalRecibida)
	}

	updated, err := s.orders.ApplyReceipts(ctx, app)
	if err != nil {
		return nil, s.mapOrderError(span, err, "failed to record receipts")
	}

	s.invalidateCache(ctx, orderID)

	if finalizar {
		s.publish(ctx, orderID, FinalizedEvent{
			ID:             updated.ID,
			Codigo:         updated.Codigo,
			Estado:         updated.Estado,
			TotalFaltante:  summary.TotalFaltante,
			TotalExcedente: summary.TotalExcedente,
			FinalizedAt:    now,
		})
	}

	return updated, nil
}

// Delete removes an open order. Closed orders, and orders whose ledger holds
// a finalization event, are refused and left untouched.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if err := s.orders.Delete(ctx, orderID); err != nil {
		return s.mapOrderError(span, err, "failed to delete order")
	}
	s.invalidateCache(ctx, orderID)
	return nil
}

// Comment appends a free-text NOTA to the order ledger. Finalized orders no
// longer accept comments; there is no header or line effect.
func (s *Service) Comment(ctx context.Context, orderID int64, detalle string) (*entity.TrackingEvent, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Comment", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	detalle = strings.TrimSpace(detalle)
	if detalle == "" {
		return nil, errorbank.Validation("comment text is required")
	}

	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	finalized, err := s.tracking.HasFinalEvent(ctx, orderID)
	if err != nil {
		return nil, errorbank.Internal("failed to check order ledger", errorbank.WithCause(err))
	}
	if finalized {
		return nil, errorbank.Conflict("order is closed")
	}

	event := &entity.TrackingEvent{
		PedidoID:   orderID,
		TipoEvento: entity.EventoNota,
		Detalle:    detalle,
	}
	if err := s.tracking.Append(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tracking error")
		return nil, errorbank.Internal("failed to append comment", errorbank.WithCause(err))
	}
	return event, nil
}

// buildItems validates the line set against the catalog and snapshots the
// product descriptions onto new line rows.
func (s *Service) buildItems(ctx context.Context, lineas []LineInput) ([]entity.OrderItem, error) {
	if len(lineas) == 0 {
		return nil, errorbank.Validation("at least one line is required")
	}
	ids := make([]int64, 0, len(lineas))
	for _, l := range lineas {
		if l.Cantidad <= 0 {
			return nil, errorbank.Validation("quantities must be positive", errorbank.WithDetail("producto_id", l.ProductoID))
		}
		ids = append(ids, l.ProductoID)
	}

	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, errorbank.Internal("failed to load products", errorbank.WithCause(err))
	}
	byID := make(map[int64]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]entity.OrderItem, 0, len(lineas))
	for _, l := range lineas {
		product, ok := byID[l.ProductoID]
		if !ok {
			return nil, errorbank.Validation("unknown product", errorbank.WithDetail("producto_id", l.ProductoID))
		}
		items = append(items, entity.OrderItem{
			ProductoID:          product.ID,
			ProductoDescripcion: product.Descripcion,
			CantidadSolicitada:  l.Cantidad,
			CantidadRecibida:    0,
		})
	}
	return items, nil
}

// buildFinalEvent serializes the reconciliation outcome for the ledger.
func (s *Service) buildFinalEvent(ctx context.Context, orderID int64, items []entity.OrderItem, summary reconcile.Summary, now time.Time) (*entity.TrackingEvent, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductoID)
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, errorbank.Internal("failed to load products", errorbank.WithCause(err))
	}
	codeByID := make(map[int64]string, len(products))
	for _, p := range products {
		codeByID[p.ID] = p.InternalID
	}

	detail := FinalDetail{
		TotalFaltante:  summary.TotalFaltante,
		TotalExcedente: summary.TotalExcedente,
	}
	for _, line := range summary.Lines {
		detail.Detalle = append(detail.Detalle, FinalDetailLine{
			ProductoID: line.ProductoID,
			Codigo:     codeByID[line.ProductoID],
			Solicitada: line.Solicitada,
			Recibida:   line.Recibida,
			Faltante:   line.Faltante(),
			Excedente:  line.Excedente(),
		})
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		return nil, errorbank.Internal("failed to encode finalization detail", errorbank.WithCause(err))
	}

	tipo := entity.EventoFinalizado
	if !summary.Exact() {
		tipo = entity.EventoFinalizadoFaltante
	}

	return &entity.TrackingEvent{
		PedidoID:   orderID,
		TipoEvento: tipo,
		Detalle:    string(payload),
		CreatedAt:  now,
	}, nil
}

func (s *Service) mapOrderError(span trace.Span, err error, message string) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return errorbank.NotFound("order not found")
	case errors.Is(err, repo.ErrClosed):
		return errorbank.Conflict("order is closed")
	case errors.Is(err, repo.ErrFinalized):
		return errorbank.Conflict("order has a finalization event")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal(message, errorbank.WithCause(err))
	}
}

// headerDiff renders a human-readable summary of what a header edit changed,
// empty when nothing relevant changed.
func headerDiff(prev, updated *entity.Order) string {
	if prev == nil || updated == nil {
		return ""
	}
	var cambios []string
	if prev.Estado != updated.Estado {
		cambios = append(cambios, fmt.Sprintf("Cambio de estado: %s → %s", orDash(prev.Estado), orDash(updated.Estado)))
	}
	if deref(prev.DocRef) != deref(updated.DocRef) {
		cambios = append(cambios, fmt.Sprintf("Cambio de Doc Ref: %s → %s", orDash(deref(prev.DocRef)), orDash(deref(updated.DocRef))))
	}
	if formatFecha(prev.FechaEntrega) != formatFecha(updated.FechaEntrega) {
		cambios = append(cambios, fmt.Sprintf("Cambio de fecha de entrega: %s → %s", formatFecha(prev.FechaEntrega), formatFecha(updated.FechaEntrega)))
	}
	return strings.Join(cambios, " | ")
}

func formatFecha(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("02/01/2006")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type wireEvent interface {
	Kind() string
}

func (s *Service) publish(ctx context.Context, orderID int64, event wireEvent) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	payload, err := json.Marshal(Envelope{Kind: event.Kind(), Data: data})
	if err != nil {
		s.logger.Error("marshal order event envelope", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("pedido-%d", orderID)), payload); err != nil {
		s.logger.Error("publish order event", zap.Error(err))
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("pedidos:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, orderID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(orderID)); err != nil {
		s.logger.Warn("orders cache delete failed", zap.Int64("id", orderID), zap.Error(err))
	}
}
