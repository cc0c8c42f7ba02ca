package repo

import (
	"context"
	"fmt"
	"strings"

	"langsense-bot/internal/store"
)

// ActiveExchangeAddress returns the payout office shown to withdrawing
// users, or a placeholder when none is configured.
func (r *Repository) ActiveExchangeAddress(ctx context.Context) (string, error) {
	records, err := store.FindAll(ctx, r.store, addressesCollection, func(rec store.Record) bool {
		return isActiveValue(rec["is_active"])
	})
	if err != nil {
		return "", fmt.Errorf("read exchange address: %w", err)
	}
	if len(records) == 0 {
		return "Address will be announced soon", nil
	}
	return addressFromRecord(records[0]).Address, nil
}

// UpdateExchangeAddress replaces the active payout address.
func (r *Repository) UpdateExchangeAddress(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return validationf("address is empty")
	}

	n, err := r.store.UpdateWhere(ctx, addressesCollection,
		func(rec store.Record) bool { return isActiveValue(rec["is_active"]) },
		func(rec store.Record) { rec["address"] = address })
	if err != nil {
		return fmt.Errorf("update exchange address: %w", err)
	}
	if n > 0 {
		return nil
	}
	addr := ExchangeAddress{ID: "1", Address: address, IsActive: true}
	if err := r.store.Append(ctx, addressesCollection, addr.record()); err != nil {
		return fmt.Errorf("update exchange address: %w", err)
	}
	return nil
}
