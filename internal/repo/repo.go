// Package repo provides typed entity services over the record store:
// users, transactions, companies, payment methods, complaints, settings
// and payout addresses. Validation happens here; handlers only render.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"langsense-bot/internal/cache"
	"langsense-bot/internal/store"
)

// Repository bundles all entity services over one record store.
type Repository struct {
	store  store.Store
	cache  *cache.Redis
	logger *slog.Logger

	customers customerSeq
	stamps    stampSource
}

// New builds a Repository. cacheClient may be nil.
func New(ctx context.Context, s store.Store, cacheClient *cache.Redis, logger *slog.Logger) (*Repository, error) {
	r := &Repository{
		store:  s,
		cache:  cacheClient,
		logger: logger.With("component", "repo"),
	}
	if err := r.seedCustomerSeq(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// seedCustomerSeq scans existing customer numbers so newly allocated ids
// continue the sequence after a restart.
func (r *Repository) seedCustomerSeq(ctx context.Context) error {
	records, err := r.store.List(ctx, usersCollection)
	if err != nil {
		return fmt.Errorf("seed customer sequence: %w", err)
	}
	var max int64
	for _, rec := range records {
		id := strings.TrimPrefix(rec["customer_id"], "C")
		n, err := strconv.ParseInt(id, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	r.customers.seed(max)
	return nil
}

// Seed writes default settings, companies and the payout address the
// first time the system runs. Existing values are never overwritten.
func (r *Repository) Seed(ctx context.Context) error {
	if err := r.seedSettings(ctx); err != nil {
		return err
	}
	if err := r.seedCompanies(ctx); err != nil {
		return err
	}
	if err := r.seedAddresses(ctx); err != nil {
		return err
	}
	return nil
}

func (r *Repository) seedCompanies(ctx context.Context) error {
	records, err := r.store.List(ctx, companiesCollection)
	if err != nil {
		return fmt.Errorf("seed companies: %w", err)
	}
	if len(records) > 0 {
		return nil
	}
	defaults := []Company{
		{ID: "1", Name: "STC Pay", ServiceType: ServiceBoth, Details: "Electronic wallet", IsActive: true},
		{ID: "2", Name: "Vodafone Cash", ServiceType: ServiceBoth, Details: "Electronic wallet", IsActive: true},
	}
	for _, c := range defaults {
		if err := r.store.Append(ctx, companiesCollection, c.record()); err != nil {
			return fmt.Errorf("seed companies: %w", err)
		}
	}
	return nil
}

func (r *Repository) seedAddresses(ctx context.Context) error {
	records, err := r.store.List(ctx, addressesCollection)
	if err != nil {
		return fmt.Errorf("seed addresses: %w", err)
	}
	if len(records) > 0 {
		return nil
	}
	addr := ExchangeAddress{ID: "1", Address: "King Fahd Road, Riyadh - first floor", IsActive: true}
	if err := r.store.Append(ctx, addressesCollection, addr.record()); err != nil {
		return fmt.Errorf("seed addresses: %w", err)
	}
	return nil
}
