package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"go.uber.org/zap"
)

// ErrNoCartOwner is returned when a request carries neither a user nor a session
var ErrNoCartOwner = shared.NewDomainError("INVALID_INPUT", "A session or login is required to use the cart")

// CartService handles shopping cart operations
type CartService struct {
	cartRepo    trade.CartRepository
	productRepo catalog.ProductRepository
	storage     catalogapp.ObjectStorage
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo trade.CartRepository,
	productRepo catalog.ProductRepository,
	storage catalogapp.ObjectStorage,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		storage:     storage,
		logger:      logger,
	}
}

// GetOrCreate returns the owner's cart, creating it when missing. A session
// with several carts keeps the oldest and loses the rest.
func (s *CartService) GetOrCreate(ctx context.Context, owner CartOwner) (*trade.Cart, error) {
	if owner.UserID != nil {
		return s.userCart(ctx, *owner.UserID)
	}
	if owner.SessionKey == "" {
		return nil, ErrNoCartOwner
	}

	carts, err := s.cartRepo.FindBySession(ctx, owner.SessionKey)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		cart := trade.NewSessionCart(owner.SessionKey)
		if err := s.cartRepo.Create(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	cart := carts[0]
	if len(carts) > 1 {
		duplicates := make([]uuid.UUID, 0, len(carts)-1)
		for _, c := range carts[1:] {
			duplicates = append(duplicates, c.ID)
		}
		if err := s.cartRepo.Delete(ctx, duplicates...); err != nil {
			return nil, err
		}
		s.logger.Info("removed duplicate session carts",
			zap.String("cart_id", cart.ID.String()),
			zap.Int("removed", len(duplicates)))
	}
	return &cart, nil
}

// Find returns the owner's cart without creating one. A missing cart is
// returned as nil.
func (s *CartService) Find(ctx context.Context, owner CartOwner) (*trade.Cart, error) {
	if owner.UserID != nil {
		cart, err := s.cartRepo.FindByUser(ctx, *owner.UserID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return cart, err
	}
	if owner.SessionKey == "" {
		return nil, nil
	}
	carts, err := s.cartRepo.FindBySession(ctx, owner.SessionKey)
	if err != nil || len(carts) == 0 {
		return nil, err
	}
	return &carts[0], nil
}

// GetCart returns the owner's cart
func (s *CartService) GetCart(ctx context.Context, owner CartOwner) (*CartResponse, error) {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart, s.storage)
	return &resp, nil
}

// AddItem adds a product to the cart. Quantity defaults to 1.
func (s *CartService) AddItem(ctx context.Context, owner CartOwner, req AddCartItemRequest) (*CartItemResponse, error) {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	product, err := s.activeProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	item, err := cart.AddItem(product, qty)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Touch(ctx, cart.ID); err != nil {
		return nil, err
	}

	resp := ToCartItemResponse(item, s.storage)
	return &resp, nil
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the
// line, reported by removed=true.
func (s *CartService) UpdateItem(ctx context.Context, owner CartOwner, req UpdateCartItemRequest) (resp *CartItemResponse, removed bool, err error) {
	if req.Quantity == nil {
		return nil, false, shared.NewDomainError("INVALID_QUANTITY", "Quantity is required")
	}
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, false, err
	}
	existing := cart.FindItem(req.ProductID)
	if existing == nil {
		return nil, false, trade.ErrCartItemNotFound
	}
	product := existing.Product
	if product == nil {
		if product, err = s.productRepo.FindByID(ctx, req.ProductID); err != nil {
			return nil, false, err
		}
	}

	item, removed, err := cart.SetItemQuantity(product, *req.Quantity)
	if err != nil {
		return nil, false, err
	}
	if removed {
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			return nil, false, err
		}
	} else if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, false, err
	}
	if err := s.cartRepo.Touch(ctx, cart.ID); err != nil {
		return nil, false, err
	}

	if removed {
		return nil, true, nil
	}
	r := ToCartItemResponse(item, s.storage)
	return &r, false, nil
}

// RemoveItem drops a product's line from the cart
func (s *CartService) RemoveItem(ctx context.Context, owner CartOwner, productID uuid.UUID) error {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}
	item, err := cart.RemoveItem(productID)
	if err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	return s.cartRepo.Touch(ctx, cart.ID)
}

// Clear drops every line from the cart
func (s *CartService) Clear(ctx context.Context, owner CartOwner) error {
	cart, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return err
	}
	return s.cartRepo.Touch(ctx, cart.ID)
}

// MergeSessionCart moves the lines of an anonymous session's carts into the
// user's cart after login. Quantities are summed and capped at stock, and
// the session carts are removed in the same transaction that saves the lines.
func (s *CartService) MergeSessionCart(ctx context.Context, sessionKey string, userID uuid.UUID) error {
	if sessionKey == "" {
		return nil
	}
	sessionCarts, err := s.cartRepo.FindBySession(ctx, sessionKey)
	if err != nil {
		return err
	}
	if len(sessionCarts) == 0 {
		return nil
	}

	userCart, err := s.userCart(ctx, userID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(sessionCarts))
	for i := range sessionCarts {
		userCart.MergeFrom(&sessionCarts[i])
		ids = append(ids, sessionCarts[i].ID)
	}

	if err := s.cartRepo.MergeCarts(ctx, userCart, ids); err != nil {
		return err
	}

	s.logger.Info("merged session cart into user cart",
		zap.String("user_id", userID.String()),
		zap.Int("session_carts", len(ids)),
		zap.Int("items", len(userCart.Items)))
	return nil
}

// PurgeStaleCarts removes anonymous carts untouched for longer than maxAge
func (s *CartService) PurgeStaleCarts(ctx context.Context, maxAge time.Duration) error {
	removed, err := s.cartRepo.DeleteStaleSessionCarts(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("purged stale session carts", zap.Int64("removed", removed))
	}
	return nil
}

func (s *CartService) userCart(ctx context.Context, userID uuid.UUID) (*trade.Cart, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	cart = trade.NewUserCart(userID)
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) activeProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalogapp.ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, catalogapp.ErrProductNotFound
	}
	return product, nil
}
