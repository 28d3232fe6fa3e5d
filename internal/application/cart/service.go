// Package cart es el dueño del carrito de cada sesión: resuelve productos y promociones contra
// el catálogo remoto, aplica el techo de stock y persiste después de cada cambio.
package cart

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
)

// MaxNotesLength límite de caracteres de las notas del pedido.
const MaxNotesLength = 500

// LockKey clave del mutex del carrito. Es distinta a la de la sesión para poder
// consultar la sesión mientras se tiene el carrito bloqueado.
func LockKey(sessionID string) string { return "cart:" + sessionID }

// Service casos de uso del carrito.
type Service struct {
	carts    repository.CartRepository
	sessions *session.Manager
	backend  ports.RestaurantBackend
	locks    *guard.KeyedMutex
	log      zerolog.Logger
}

// NewService construye el servicio. locks se comparte con el caso de uso de órdenes.
func NewService(
	carts repository.CartRepository,
	sessions *session.Manager,
	backend ports.RestaurantBackend,
	locks *guard.KeyedMutex,
	log zerolog.Logger,
) *Service {
	return &Service{carts: carts, sessions: sessions, backend: backend, locks: locks, log: log}
}

// Get devuelve el carrito de la sesión con la proyección de crédito.
func (s *Service) Get(ctx context.Context, sessionID string) (*dto.CartSummaryDTO, error) {
	sess, err := s.sessions.RequireAuthenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(LockKey(sessionID))
	defer unlock()

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Summarize(c, sess.User), nil
}

// mutate aplica fn bajo el lock del carrito y persiste solo si fn no falla.
func (s *Service) mutate(ctx context.Context, sess *entity.Session, fn func(*entity.Cart) error) (*dto.CartSummaryDTO, error) {
	unlock := s.locks.Lock(LockKey(sess.ID))
	defer unlock()

	c, err := s.carts.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, sess.ID, c); err != nil {
		return nil, err
	}
	return Summarize(c, sess.User), nil
}

func (s *Service) authenticated(ctx context.Context, sessionID string) (*entity.Session, error) {
	return s.sessions.RequireAuthenticated(ctx, sessionID)
}

// AddItem agrega qty unidades (mínimo 1) del producto. La cantidad resultante no puede
// superar el stock informado por el catálogo.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, qty int) (*dto.CartSummaryDTO, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	products, err := s.backend.Products(ctx, sess.InternalToken)
	if err != nil {
		return nil, err
	}
	product, ok := entity.FindProduct(products, productID)
	if !ok {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !product.Validate() {
		return nil, fmt.Errorf("%w: producto %s con datos inválidos", domain.ErrInvalidInput, productID)
	}
	if qty < 1 {
		qty = 1
	}

	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		if next := c.ItemQuantity(productID) + qty; next > product.Stock {
			return fmt.Errorf("%w: %s tiene %d disponibles", domain.ErrInsufficientStock, product.Name, product.Stock)
		}
		c.AddItem(product, qty)
		s.log.Debug().Str("session_id", sessionID).Str("product_id", productID).Int("qty", qty).Msg("producto agregado")
		return nil
	})
}

// SetItemQuantity fija la cantidad de un producto ya agregado; qty <= 0 lo quita.
func (s *Service) SetItemQuantity(ctx context.Context, sessionID, productID string, qty int) (*dto.CartSummaryDTO, error) {
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		if qty <= 0 {
			c.RemoveItem(productID)
			return nil
		}
		for _, l := range c.Items {
			if l.Product.ID != productID {
				continue
			}
			if qty > l.Product.Stock {
				return fmt.Errorf("%w: %s tiene %d disponibles", domain.ErrInsufficientStock, l.Product.Name, l.Product.Stock)
			}
			c.SetItemQuantity(productID, qty)
			return nil
		}
		return fmt.Errorf("%w: producto %s no está en el carrito", domain.ErrNotFound, productID)
	})
}

// RemoveItem idempotente.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*dto.CartSummaryDTO, error) {
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// AddOffer agrega qty (mínimo 1) de una promoción del catálogo.
func (s *Service) AddOffer(ctx context.Context, sessionID, offerID string, qty int) (*dto.CartSummaryDTO, error) {
	if offerID == "" {
		return nil, fmt.Errorf("%w: offer_id requerido", domain.ErrInvalidInput)
	}
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	offers, err := s.backend.Offers(ctx, sess.InternalToken)
	if err != nil {
		return nil, err
	}
	offer, ok := entity.FindOffer(offers, offerID)
	if !ok {
		return nil, fmt.Errorf("%w: promoción %s", domain.ErrNotFound, offerID)
	}
	if !offer.Validate() {
		return nil, fmt.Errorf("%w: promoción %s con datos inválidos", domain.ErrInvalidInput, offerID)
	}
	if qty < 1 {
		qty = 1
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		c.AddOffer(offer, qty)
		return nil
	})
}

// SetOfferQuantity fija la cantidad de una promoción; qty <= 0 la quita.
func (s *Service) SetOfferQuantity(ctx context.Context, sessionID, offerID string, qty int) (*dto.CartSummaryDTO, error) {
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		if qty <= 0 {
			c.RemoveOffer(offerID)
			return nil
		}
		if !c.SetOfferQuantity(offerID, qty) {
			return fmt.Errorf("%w: promoción %s no está en el carrito", domain.ErrNotFound, offerID)
		}
		return nil
	})
}

// RemoveOffer idempotente.
func (s *Service) RemoveOffer(ctx context.Context, sessionID, offerID string) (*dto.CartSummaryDTO, error) {
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		c.RemoveOffer(offerID)
		return nil
	})
}

// SetNotes reemplaza las notas del pedido.
func (s *Service) SetNotes(ctx context.Context, sessionID, notes string) (*dto.CartSummaryDTO, error) {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return nil, fmt.Errorf("%w: las notas admiten hasta %d caracteres", domain.ErrInvalidInput, MaxNotesLength)
	}
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		c.SetNotes(notes)
		return nil
	})
}

// SetPaymentMethod cambia el método de pago. Crédito no se puede elegir si el carrito
// excede la línea disponible.
func (s *Service) SetPaymentMethod(ctx context.Context, sessionID, method string) (*dto.CartSummaryDTO, error) {
	m, ok := entity.ParsePaymentMethod(method)
	if !ok {
		return nil, fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, method)
	}
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		status := c.CreditLineStatus(sess.User.MaxCreditLine, sess.User.RemainingCreditLine)
		if !status.AllowsPayment(m) {
			return domain.ErrCreditLimitExceeded
		}
		c.SetPaymentMethod(m)
		return nil
	})
}

// Clear vacía el carrito conservando el método de pago.
func (s *Service) Clear(ctx context.Context, sessionID string) (*dto.CartSummaryDTO, error) {
	sess, err := s.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, func(c *entity.Cart) error {
		c.Clear()
		return nil
	})
}
