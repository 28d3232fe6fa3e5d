// Package table casos de uso de una mesa autenticada: pedido, dashboard, menú, mesero y comprobantes.
package table

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/mesa-api/internal/application/cart"
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
	"github.com/jhoicas/mesa-api/pkg/money"
)

// UseCase orquesta el backend del restaurante para una sesión de mesa.
type UseCase struct {
	sessions *session.Manager
	carts    repository.CartRepository
	receipts repository.ReceiptRepository
	backend  ports.RestaurantBackend
	pdf      ports.ReceiptPDFGenerator
	locks    *guard.KeyedMutex
	inflight *guard.InFlight
	log      zerolog.Logger
	now      func() time.Time
}

// Deps dependencias del caso de uso.
type Deps struct {
	Sessions *session.Manager
	Carts    repository.CartRepository
	Receipts repository.ReceiptRepository
	Backend  ports.RestaurantBackend
	PDF      ports.ReceiptPDFGenerator
	Locks    *guard.KeyedMutex
	Log      zerolog.Logger
}

func NewUseCase(d Deps) *UseCase {
	return &UseCase{
		sessions: d.Sessions,
		carts:    d.Carts,
		receipts: d.Receipts,
		backend:  d.Backend,
		pdf:      d.PDF,
		locks:    d.Locks,
		inflight: guard.NewInFlight(),
		log:      d.Log,
		now:      time.Now,
	}
}

// PlaceOrder envía el carrito como orden. Solo una confirmación por sesión a la vez; si el
// backend falla el carrito queda intacto para reintentar.
func (uc *UseCase) PlaceOrder(ctx context.Context, sessionID string) (*dto.ReceiptDTO, error) {
	if !uc.inflight.TryAcquire(sessionID) {
		return nil, domain.ErrOrderInFlight
	}
	defer uc.inflight.Release(sessionID)

	sess, err := uc.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// el carrito queda bloqueado durante el envío
	unlock := uc.locks.Lock(cart.LockKey(sessionID))
	defer unlock()

	c, err := uc.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	status := c.CreditLineStatus(sess.User.MaxCreditLine, sess.User.RemainingCreditLine)
	if !status.AllowsPayment(c.PaymentMethod) {
		return nil, domain.ErrCreditLimitExceeded
	}

	req := entity.NewOrderRequest(*sess.User, c)
	result, err := uc.backend.CreateOrder(ctx, sess.InternalToken, req)
	if err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Str("table_id", sess.TableID).Msg("error al crear la orden")
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderSubmission, err)
	}

	receipt := entity.NewReceipt(sess, c, *result, uc.now())
	c.Clear()
	if err := uc.carts.Save(ctx, sessionID, c); err != nil {
		// la orden ya existe en el backend: se informa el comprobante aunque el carrito no se haya podido limpiar
		uc.log.Error().Err(err).Str("session_id", sessionID).Int64("order_number", result.OrderNumber).Msg("no se pudo vaciar el carrito")
	}
	if err := uc.receipts.Save(ctx, receipt); err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Int64("order_number", result.OrderNumber).Msg("no se pudo guardar el comprobante")
	}

	uc.log.Info().
		Str("session_id", sessionID).
		Str("table_id", sess.TableID).
		Int64("order_number", result.OrderNumber).
		Str("payment_method", string(receipt.PaymentMethod)).
		Str("total", receipt.Total.StringFixed(2)).
		Msg("orden creada")
	return toReceiptDTO(receipt), nil
}

// Dashboard órdenes sin pagar y promociones (en paralelo) más el estado del crédito con el carrito actual.
func (uc *UseCase) Dashboard(ctx context.Context, sessionID string) (*dto.DashboardDTO, error) {
	sess, err := uc.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		unpaid *entity.UnpaidOrders
		offers []entity.Offer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		unpaid, err = uc.backend.UnpaidOrders(gctx, sess.InternalToken, sess.User.CURP)
		return err
	})
	g.Go(func() (err error) {
		offers, err = uc.backend.Offers(gctx, sess.InternalToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c, err := uc.cartSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardDTO{
		TableID:       sess.TableID,
		User:          session.ToUserDTO(*sess.User),
		Credit:        cart.CreditStatus(c.CreditLineStatus(sess.User.MaxCreditLine, sess.User.RemainingCreditLine)),
		UnpaidOrders:  []dto.UnpaidOrderDTO{},
		Offers:        validOffers(offers),
		CartItemCount: c.ItemCount(),
	}
	if unpaid != nil {
		out.UnpaidOrdersCount = unpaid.UnpaidOrdersCount
		out.TotalAmountOwed = unpaid.TotalAmountOwed
		for _, o := range unpaid.Orders {
			out.UnpaidOrders = append(out.UnpaidOrders, dto.UnpaidOrderDTO{
				OrderNumber: o.OrderNumber,
				Table:       o.Table,
				Status:      o.Status,
				StatusLabel: entity.OrderStatusLabel(o.Status),
				Delivered:   o.Delivered,
				TotalAmount: o.TotalAmount,
				Products:    o.Products,
				Offers:      o.Offers,
				CreatedAt:   o.CreatedAt,
			})
		}
	}
	return out, nil
}

// Menu categorías, productos y promociones del tenant, pedidos en paralelo.
// Los registros que no pasan la validación mínima se descartan.
func (uc *UseCase) Menu(ctx context.Context, sessionID string) (*dto.MenuDTO, error) {
	sess, err := uc.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		products   []entity.Product
		categories []entity.MenuCategory
		offers     []entity.Offer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = uc.backend.Products(gctx, sess.InternalToken)
		return err
	})
	g.Go(func() (err error) {
		categories, err = uc.backend.MenuCategories(gctx, sess.InternalToken)
		return err
	})
	g.Go(func() (err error) {
		offers, err = uc.backend.Offers(gctx, sess.InternalToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.MenuDTO{
		Categories: categories,
		Products:   make([]entity.Product, 0, len(products)),
		Offers:     validOffers(offers),
	}
	if out.Categories == nil {
		out.Categories = []entity.MenuCategory{}
	}
	for _, p := range products {
		if !p.Validate() {
			uc.log.Warn().Str("product_id", p.ID).Msg("producto inválido descartado")
			continue
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

// CallWaiter avisa al mesero.
func (uc *UseCase) CallWaiter(ctx context.Context, sessionID string) (*dto.WaiterCallDTO, error) {
	sess, err := uc.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res, err := uc.backend.CallWaiter(ctx, sess.InternalToken, sess.User.CURP)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", sessionID).Str("table_id", sess.TableID).Msg("mesero llamado")
	return &dto.WaiterCallDTO{Calling: res.Calling}, nil
}

// CancelWaiterCall cancela el llamado.
func (uc *UseCase) CancelWaiterCall(ctx context.Context, sessionID string) (*dto.WaiterCallDTO, error) {
	sess, err := uc.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res, err := uc.backend.CancelWaiterCall(ctx, sess.InternalToken, sess.User.CURP)
	if err != nil {
		return nil, err
	}
	return &dto.WaiterCallDTO{Calling: res.Calling}, nil
}

// Receipt comprobante de una orden de esta sesión.
func (uc *UseCase) Receipt(ctx context.Context, sessionID string, orderNumber int64) (*dto.ReceiptDTO, error) {
	r, err := uc.receipt(ctx, sessionID, orderNumber)
	if err != nil {
		return nil, err
	}
	return toReceiptDTO(r), nil
}

// ReceiptPDF comprobante imprimible con QR del código de recolección.
func (uc *UseCase) ReceiptPDF(ctx context.Context, sessionID string, orderNumber int64) ([]byte, error) {
	r, err := uc.receipt(ctx, sessionID, orderNumber)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateReceiptPDF(ctx, r)
}

func (uc *UseCase) receipt(ctx context.Context, sessionID string, orderNumber int64) (*entity.Receipt, error) {
	if _, err := uc.sessions.RequireAuthenticated(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.receipts.Get(ctx, sessionID, orderNumber)
}

func (uc *UseCase) cartSnapshot(ctx context.Context, sessionID string) (*entity.Cart, error) {
	unlock := uc.locks.Lock(cart.LockKey(sessionID))
	defer unlock()
	return uc.carts.Get(ctx, sessionID)
}

func validOffers(offers []entity.Offer) []entity.Offer {
	out := make([]entity.Offer, 0, len(offers))
	for _, o := range offers {
		if o.Validate() {
			out = append(out, o)
		}
	}
	return out
}

func toReceiptDTO(r *entity.Receipt) *dto.ReceiptDTO {
	out := &dto.ReceiptDTO{
		OrderNumber:        r.OrderNumber,
		TakeAwayCode:       r.TakeAwayCode,
		TableID:            r.TableID,
		UserName:           r.UserName,
		PaymentMethod:      string(r.PaymentMethod),
		PaymentMethodLabel: entity.PaymentMethodLabel(r.PaymentMethod),
		Subtotal:           r.Subtotal,
		ServiceCharge:      r.ServiceCharge,
		Total:              r.Total,
		TotalDisplay:       money.Format(r.Total),
		Notes:              r.Notes,
		Lines:              make([]dto.ReceiptLineDTO, 0, len(r.Lines)),
		CreatedAt:          r.CreatedAt,
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, dto.ReceiptLineDTO{Name: l.Name, Quantity: l.Quantity, Amount: l.Amount, IsOffer: l.IsOffer})
	}
	return out
}
