package analysiscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/eclatderm/visage/internal/domain/analysis"
)

// ValkeyStore caches completed analyses in a Valkey-compatible database so
// a user can reload their result without a second inference call.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "analysis"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Save caches the analysis with optional TTL.
func (s *ValkeyStore) Save(ctx context.Context, res analysis.Response, ttl time.Duration) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(res.ID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Get implements analysis.ResultStore.
func (s *ValkeyStore) Get(ctx context.Context, id uuid.UUID) (analysis.Response, bool, error) {
	cmd := s.client.B().Get().Key(s.key(id)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return analysis.Response{}, false, nil
		}
		return analysis.Response{}, false, err
	}
	var res analysis.Response
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return analysis.Response{}, false, err
	}
	return res, true, nil
}

func (s *ValkeyStore) key(id uuid.UUID) string {
	return s.prefix + ":" + id.String()
}

var _ analysis.ResultStore = (*ValkeyStore)(nil)
