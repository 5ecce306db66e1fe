package bluez

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

// Resolver looks up a device by address
type Resolver interface {
	Resolve(ctx context.Context, address string) (*Device, error)
}

// StaticResolver resolves any well-formed address without asking BlueZ.
// The returned device advertises UUIDs, if set.
type StaticResolver struct {
	UUIDs []string
}

// Resolve validates the address and returns a bare device record
func (r StaticResolver) Resolve(ctx context.Context, address string) (*Device, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return &Device{
		Address: addr,
		UUIDs:   append([]string(nil), r.UUIDs...),
	}, nil
}

// FallbackResolver asks Primary first and uses Fallback only when
// Primary reports ErrUnavailable, or ErrUnknownDevice if UnknownOK is set.
type FallbackResolver struct {
	Primary   Resolver
	Fallback  Resolver
	UnknownOK bool
}

// Resolve implements Resolver
func (r FallbackResolver) Resolve(ctx context.Context, address string) (*Device, error) {
	dev, err := r.Primary.Resolve(ctx, address)
	if err == nil || r.Fallback == nil || !r.falls(err) {
		return dev, err
	}
	logging.Debug("BlueZ lookup failed, using fallback resolver",
		zap.String("address", address),
		zap.Error(err),
	)
	return r.Fallback.Resolve(ctx, address)
}

func (r FallbackResolver) falls(err error) bool {
	return errors.Is(err, ErrUnavailable) || (r.UnknownOK && errors.Is(err, ErrUnknownDevice))
}

// NewResolver returns a BlueZ-backed resolver that falls back to a
// StaticResolver when the system bus cannot be reached. With unknownOK,
// devices BlueZ has never seen resolve to a bare record as well. The
// returned close function releases the bus connection.
func NewResolver(adapter string, unknownOK bool) (Resolver, func() error) {
	client, err := NewClient(adapter)
	if err != nil {
		logging.Debug("BlueZ client unavailable", zap.Error(err))
		return StaticResolver{}, func() error { return nil }
	}
	return FallbackResolver{Primary: client, Fallback: StaticResolver{}, UnknownOK: unknownOK}, client.Close
}

func describe(address string, err error) error {
	return fmt.Errorf("lookup %s: %w", address, err)
}
