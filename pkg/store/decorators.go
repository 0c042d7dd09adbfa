package store

import (
	"context"
	"errors"
	"time"

	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/observability"
)

// =============================================================================
// Retry
// =============================================================================

type retrying struct {
	Store
	policy RetryPolicy
}

// WithRetry retries reads and deletes of s under policy when they fail with
// a Retryable error. CreateConnection is not retried: a write that timed
// out may still have landed, and the caller owns at-most-once semantics.
func WithRetry(s Store, policy RetryPolicy) Store {
	return &retrying{Store: s, policy: policy}
}

func (r *retrying) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	var items []inventory.Item
	err := r.policy.Do(ctx, func() error {
		var err error
		items, err = r.Store.ListItems(ctx, zone)
		return err
	})
	return items, err
}

func (r *retrying) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	var conns []inventory.Connection
	err := r.policy.Do(ctx, func() error {
		var err error
		conns, err = r.Store.ListConnections(ctx, deployment)
		return err
	})
	return conns, err
}

func (r *retrying) DeleteConnection(ctx context.Context, deployment, id string) error {
	return r.policy.Do(ctx, func() error {
		return r.Store.DeleteConnection(ctx, deployment, id)
	})
}

// =============================================================================
// Validation
// =============================================================================

type validating struct {
	Store
	onInvalid func(error)
}

// WithValidation drops records that fail [inventory.Item.Validate] or
// [inventory.Connection.Validate] from listings and normalizes the rest.
// Each dropped record is reported to onInvalid, which may be nil.
func WithValidation(s Store, onInvalid func(error)) Store {
	if onInvalid == nil {
		onInvalid = func(error) {}
	}
	return &validating{Store: s, onInvalid: onInvalid}
}

func (v *validating) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	items, err := v.Store.ListItems(ctx, zone)
	if err != nil {
		return nil, err
	}
	ok, problems := inventory.ValidItems(items)
	for _, p := range problems {
		v.onInvalid(p)
	}
	return ok, nil
}

func (v *validating) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	conns, err := v.Store.ListConnections(ctx, deployment)
	if err != nil {
		return nil, err
	}
	ok, problems := inventory.ValidConnections(conns)
	for _, p := range problems {
		v.onInvalid(p)
	}
	return ok, nil
}

// =============================================================================
// Hooks
// =============================================================================

type instrumented struct {
	Store
	hooks observability.StoreHooks
}

// WithHooks reports every call on s to hooks.
func WithHooks(s Store, hooks observability.StoreHooks) Store {
	if hooks == nil {
		return s
	}
	return &instrumented{Store: s, hooks: hooks}
}

func (i *instrumented) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	start := time.Now()
	items, err := i.Store.ListItems(ctx, zone)
	i.hooks.OnStoreCall(ctx, "list_items", time.Since(start), err)
	return items, err
}

func (i *instrumented) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	start := time.Now()
	conns, err := i.Store.ListConnections(ctx, deployment)
	i.hooks.OnStoreCall(ctx, "list_connections", time.Since(start), err)
	return conns, err
}

func (i *instrumented) CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error) {
	start := time.Now()
	out, err := i.Store.CreateConnection(ctx, deployment, c)
	i.hooks.OnStoreCall(ctx, "create_connection", time.Since(start), err)
	if errors.Is(err, ErrConflict) {
		i.hooks.OnConflict(ctx, deployment)
	}
	return out, err
}

func (i *instrumented) DeleteConnection(ctx context.Context, deployment, id string) error {
	start := time.Now()
	err := i.Store.DeleteConnection(ctx, deployment, id)
	i.hooks.OnStoreCall(ctx, "delete_connection", time.Since(start), err)
	return err
}

// PutItems forwards to the wrapped store when it implements ItemWriter.
func (v *validating) PutItems(ctx context.Context, items []inventory.Item) error {
	return putItems(ctx, v.Store, items)
}

// PutItems forwards to the wrapped store when it implements ItemWriter.
func (r *retrying) PutItems(ctx context.Context, items []inventory.Item) error {
	return putItems(ctx, r.Store, items)
}

// PutItems forwards to the wrapped store when it implements ItemWriter.
func (i *instrumented) PutItems(ctx context.Context, items []inventory.Item) error {
	return putItems(ctx, i.Store, items)
}

func putItems(ctx context.Context, s Store, items []inventory.Item) error {
	w, ok := s.(ItemWriter)
	if !ok {
		return ErrReadOnly
	}
	return w.PutItems(ctx, items)
}
