// Package store persists overlay sessions for the placement API.
//
// A session ([Record]) holds everything needed to rebuild a positioner
// between requests: the host geometry last reported by the client, the
// engine configuration, the preference list and the engine [overlay.State]
// (last position, push vector, bounding box size). Requests load the
// record, replay the operation against a fresh positioner seeded with that
// state, and save it back.
//
// Backends:
//   - [MemoryStore]: single process, tests and development
//   - [FileStore]: one JSON file per session
//   - [RedisStore]: shared across instances, expiry handled by Redis
//   - [MongoStore]: durable, expiry handled by a TTL index
//
// Use [Open] to construct one from a [Config].
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Record is a persisted overlay session.
type Record struct {
	ID string `json:"id" bson:"_id"`

	Viewport scenario.Viewport `json:"viewport" bson:"viewport"`
	Origin   geom.Rect         `json:"origin" bson:"origin"`
	Overlay  geom.Size         `json:"overlay" bson:"overlay"`
	Hidden   bool              `json:"hidden,omitempty" bson:"hidden,omitempty"`

	Config    overlay.Config              `json:"config" bson:"config"`
	Positions []overlay.ConnectedPosition `json:"positions" bson:"positions"`

	// Attached is false after the session was detached; operations other
	// than attach are then no-ops.
	Attached  bool               `json:"attached" bson:"attached"`
	State     overlay.State      `json:"state" bson:"state"`
	Placement *overlay.Placement `json:"placement,omitempty" bson:"placement,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// NewRecord returns an attached session with a fresh UUID.
func NewRecord(ttl time.Duration) *Record {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Config:    overlay.DefaultConfig(),
		Attached:  true,
		State:     overlay.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has outlived its TTL.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Touch marks the session as used, extending its expiry by ttl.
func (r *Record) Touch(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r.UpdatedAt = time.Now().UTC()
	r.ExpiresAt = r.UpdatedAt.Add(ttl)
}

// Host returns a static host for the session's geometry.
func (r *Record) Host() *scenario.StaticHost {
	h := scenario.NewStaticHost(r.Viewport, r.Origin, r.Overlay)
	h.Hidden = r.Hidden
	return h
}

// Store is the interface for session storage backends.
type Store interface {
	// Get returns the session with the given id. Missing and expired
	// sessions yield an OVERLAY_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// Put creates or replaces a session.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	// Backends with native expiry return 0.
	Cleanup(ctx context.Context) (int, error)

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeOverlayNotFound, "overlay %s not found", id)
}

func storageErr(err error, op string) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "%s", op)
}
