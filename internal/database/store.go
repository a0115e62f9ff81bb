package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archipelago-scent/internal/config"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("document with this key already exists")
	ErrUnavailable = errors.New("document store unavailable")
)

// Collection names
const (
	UsersCollection    = "users"
	IslandsCollection  = "islands"
	ProductsCollection = "products"
	QuizCollection     = "quiz"
	OrdersCollection   = "orders"
	ThemeCollection    = "theme"
	FAQCollection      = "faq"
)

// Collections lists every collection the storefront writes to
var Collections = []string{
	UsersCollection,
	IslandsCollection,
	ProductsCollection,
	QuizCollection,
	OrdersCollection,
	ThemeCollection,
	FAQCollection,
}

// uniqueFields are enforced on top of the per-collection unique "id"
var uniqueFields = map[string][]string{
	UsersCollection: {"username"},
}

// Filter matches documents whose top-level fields equal the given values
type Filter map[string]interface{}

// Fields is a set of top-level fields written by Update and Upsert
type Fields map[string]interface{}

// SortOrder represents the sort direction
type SortOrder int

const (
	SortAsc  SortOrder = 1
	SortDesc SortOrder = -1
)

// FindOptions controls ordering and size of a Find result
type FindOptions struct {
	SortBy string
	Order  SortOrder
	Limit  int64
}

// Collection is the document store contract every backend implements.
// Documents are addressed by their "id" field; backend metadata is never
// decoded into results.
type Collection interface {
	// FindOne decodes the first match into out or returns ErrNotFound
	FindOne(ctx context.Context, filter Filter, out interface{}) error
	// Find decodes all matches into out, which must be a pointer to a slice
	Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error
	// Insert stores a new document; ErrDuplicate on unique key violation
	Insert(ctx context.Context, doc interface{}) error
	// Update merges fields into the first match and reports how many matched
	Update(ctx context.Context, filter Filter, set Fields) (int64, error)
	// Upsert merges fields into the match or creates it from filter and fields.
	// The filter must contain the document "id".
	Upsert(ctx context.Context, filter Filter, set Fields) error
	// Delete removes the first match and reports how many were removed
	Delete(ctx context.Context, filter Filter) (int64, error)
}

// Store hands out collections and owns the underlying connection
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New opens the backend selected by cfg.Driver
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	switch cfg.Driver {
	case "", "mongo", "mongodb":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.Database, timeout)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, cfg.PostgresDSN, timeout)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Health reports the store status in a form suitable for logging and /health
func Health(ctx context.Context, store Store) map[string]string {
	if err := store.Ping(ctx); err != nil {
		return map[string]string{
			"status": "down",
			"error":  err.Error(),
		}
	}
	return map[string]string{"status": "up"}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
