package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eclatderm/visage/internal/domain/catalog"
	"github.com/eclatderm/visage/internal/infra/llm/chatgpt"
)

// ChatClient is the vision inference boundary.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// StoredPhoto is a photo blob with its content type.
type StoredPhoto struct {
	Data     []byte
	MimeType string
}

// PhotoStore abstracts the session blob store for uploaded photos. No
// transactions, no versioning.
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) (StoredPhoto, error)
	Delete(ctx context.Context, keys []string) error
	Clear(ctx context.Context) error
}

// ProductResolver enriches loose product references with catalog records.
type ProductResolver interface {
	Resolve(ctx context.Context, identifier, fallbackName string) catalog.Product
}

// ResultStore caches completed analyses for later retrieval.
type ResultStore interface {
	Save(ctx context.Context, res Response, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (Response, bool, error)
}
