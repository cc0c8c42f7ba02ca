package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"langsense-bot/internal/store"
)

// Well-known setting keys.
const (
	SettingMinDeposit         = "min_deposit"
	SettingMinWithdrawal      = "min_withdrawal"
	SettingMaxDailyWithdrawal = "max_daily_withdrawal"
	SettingSupportPhone       = "support_phone"
	SettingCompanyName        = "company_name"
)

const settingsCacheKey = "settings:all"

// Setting returns the value for key, or fallback when the key is absent.
func (r *Repository) Setting(ctx context.Context, key, fallback string) string {
	settings, err := r.allSettings(ctx)
	if err != nil {
		r.logger.Warn("read settings", "error", err)
		return fallback
	}
	if v, ok := settings[key]; ok && v != "" {
		return v
	}
	return fallback
}

// SettingDecimal parses the setting as a decimal, falling back on
// missing or malformed values.
func (r *Repository) SettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	raw := r.Setting(ctx, key, "")
	if raw == "" {
		return fallback
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		r.logger.Warn("setting is not numeric", "key", key, "value", raw)
		return fallback
	}
	return v
}

// SetSetting updates an existing setting. Unknown keys are rejected so a
// typo in an admin command cannot create a dangling entry.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if value == "" {
		return validationf("setting value is empty")
	}

	n, err := r.store.UpdateWhere(ctx, settingsCollection,
		func(rec store.Record) bool { return rec["setting_key"] == key },
		func(rec store.Record) { rec["setting_value"] = value })
	if err != nil {
		return fmt.Errorf("update setting: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.cache.Invalidate(ctx, settingsCacheKey)
	return nil
}

// ListSettings returns every setting row.
func (r *Repository) ListSettings(ctx context.Context) ([]Setting, error) {
	records, err := r.store.List(ctx, settingsCollection)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	settings := make([]Setting, 0, len(records))
	for _, rec := range records {
		settings = append(settings, settingFromRecord(rec))
	}
	return settings, nil
}

func (r *Repository) allSettings(ctx context.Context) (map[string]string, error) {
	var cached map[string]string
	hit, err := r.cache.GetJSON(ctx, settingsCacheKey, &cached)
	if err != nil {
		r.logger.Warn("settings cache read", "error", err)
	}
	if hit {
		return cached, nil
	}

	records, err := r.store.List(ctx, settingsCollection)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(records))
	for _, rec := range records {
		settings[rec["setting_key"]] = rec["setting_value"]
	}
	if err := r.cache.SetJSON(ctx, settingsCacheKey, settings, time.Minute); err != nil {
		r.logger.Warn("settings cache write", "error", err)
	}
	return settings, nil
}

func (r *Repository) seedSettings(ctx context.Context) error {
	defaults := []Setting{
		{Key: SettingMinDeposit, Value: "50", Description: "Minimum deposit amount"},
		{Key: SettingMinWithdrawal, Value: "100", Description: "Minimum withdrawal amount"},
		{Key: SettingMaxDailyWithdrawal, Value: "10000", Description: "Maximum withdrawal amount"},
		{Key: SettingSupportPhone, Value: "+966501234567", Description: "Customer support phone"},
		{Key: SettingCompanyName, Value: "LangSense Financial", Description: "Display name of the service"},
	}
	for _, s := range defaults {
		_, err := store.FindOne(ctx, r.store, settingsCollection, func(rec store.Record) bool {
			return rec["setting_key"] == s.Key
		})
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNoRecord) {
			return fmt.Errorf("seed settings: %w", err)
		}
		if err := r.store.Append(ctx, settingsCollection, s.record()); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}
	return nil
}
