// Package thumbnail queues thumbnail generation requests for documents.
// Rendering itself happens outside this service.
package thumbnail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/doclib/internal/domain"
)

var (
	pendingPrefix = domain.KeyPrefix + "thumb:"
	queueKey      = domain.KeyPrefix + "thumbnails:queue"
)

// store is the consumer interface for the thumbnail queue (ISP).
type store interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	RPush(ctx context.Context, key string, values ...string) error
	Del(ctx context.Context, key string) error
}

type request struct {
	NodeID      string `json:"nodeId"`
	Rendition   string `json:"rendition"`
	RequestedAt int64  `json:"requestedAt"`
}

// Queue pushes at most one pending request per node within ttl.
type Queue struct {
	store     store
	rendition string
	ttl       time.Duration
	now       func() time.Time
}

// New creates a thumbnail queue for the given rendition name.
func New(s store, rendition string, ttl time.Duration) *Queue {
	return &Queue{store: s, rendition: rendition, ttl: ttl, now: time.Now}
}

// Request enqueues a thumbnail for nodeID unless one is already pending.
// It reports whether a new request was queued.
func (q *Queue) Request(ctx context.Context, nodeID string) (bool, error) {
	key := pendingPrefix + nodeID
	ok, err := q.store.SetNX(ctx, key, []byte("pending"), q.ttl)
	if err != nil {
		return false, fmt.Errorf("mark thumbnail %s: %w", nodeID, err)
	}
	if !ok {
		return false, nil
	}

	payload, err := json.Marshal(request{NodeID: nodeID, Rendition: q.rendition, RequestedAt: q.now().UnixMilli()})
	if err != nil {
		return false, fmt.Errorf("marshal thumbnail request: %w", err)
	}
	if err := q.store.RPush(ctx, queueKey, string(payload)); err != nil {
		// let the next listing retry
		_ = q.store.Del(ctx, key)
		return false, fmt.Errorf("enqueue thumbnail %s: %w", nodeID, err)
	}
	return true, nil
}
