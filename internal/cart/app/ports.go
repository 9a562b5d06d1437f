package app

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

var (
	// ErrRecordNotFound is returned by a RecordStore when a record id is unknown remotely.
	ErrRecordNotFound  = errors.New("cart record not found")
	ErrProductNotFound = errors.New("product not found")
)

// RecordStore is the remote record service holding one record per (user, product).
type RecordStore interface {
	ListRecords(ctx context.Context, userID string) ([]domain.Record, error)
	CreateRecord(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Record, error)
	UpdateRecordQuantity(ctx context.Context, recordID string, quantity int) (domain.Record, error)
	DeleteRecord(ctx context.Context, recordID string) error
	DeleteAllRecords(ctx context.Context, userID string) error
}

// IdentitySource is the authentication collaborator seen from the cart.
// An empty user id means anonymous.
type IdentitySource interface {
	CurrentUserID() string
	Subscribe(fn func(prev, next string)) (unsubscribe func())
}

// ProductLookup resolves a product id to the snapshot that goes into the cart.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}
