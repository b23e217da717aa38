package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
)

// TransactionScope provides transactional access to stock data.
// Every repository call made inside fn is committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stock operations available inside a
// transaction. LockProduct holds the product row until the transaction ends,
// so concurrent restocks and checkouts serialise on it.
type TransactionalRepositories interface {
	// LockProduct loads a product and locks its row for update
	LockProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	// UpdateStock writes the product's stock_quantity
	UpdateStock(ctx context.Context, product *catalog.Product) error
	// HistoryRepo returns the stock history repository scoped to the transaction
	HistoryRepo() inventory.StockHistoryRepository
}
