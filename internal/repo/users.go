package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"langsense-bot/internal/store"
)

// RegisterUser creates a new user with a freshly allocated customer id.
func (r *Repository) RegisterUser(ctx context.Context, telegramID int64, name, phone, language string) (User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if len([]rune(name)) < 2 {
		return User{}, validationf("name too short")
	}
	if len(phone) < 10 {
		return User{}, validationf("phone too short")
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	if language == "" {
		language = "ar"
	}

	if _, err := r.UserByTelegramID(ctx, telegramID); err == nil {
		return User{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	user := User{
		TelegramID:   telegramID,
		Name:         name,
		Phone:        phone,
		CustomerID:   r.customers.allocate(),
		Language:     language,
		RegisteredAt: time.Now(),
	}
	if err := r.store.Append(ctx, usersCollection, user.record()); err != nil {
		return User{}, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

// UserByTelegramID finds one user by chat identity.
func (r *Repository) UserByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	id := strconv.FormatInt(telegramID, 10)
	rec, err := store.FindOne(ctx, r.store, usersCollection, func(rec store.Record) bool {
		return rec["telegram_id"] == id
	})
	if errors.Is(err, store.ErrNoRecord) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return userFromRecord(rec), nil
}

// UserByCustomerID finds one user by customer number.
func (r *Repository) UserByCustomerID(ctx context.Context, customerID string) (User, error) {
	rec, err := store.FindOne(ctx, r.store, usersCollection, func(rec store.Record) bool {
		return rec["customer_id"] == customerID
	})
	if errors.Is(err, store.ErrNoRecord) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return userFromRecord(rec), nil
}

// SearchUsers matches the query as a case-insensitive substring of name,
// phone or customer id.
func (r *Repository) SearchUsers(ctx context.Context, query string) ([]User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, validationf("empty search query")
	}
	records, err := store.FindAll(ctx, r.store, usersCollection, func(rec store.Record) bool {
		return strings.Contains(strings.ToLower(rec["name"]), query) ||
			strings.Contains(strings.ToLower(rec["phone"]), query) ||
			strings.Contains(strings.ToLower(rec["customer_id"]), query)
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

// ListUsers returns every registered user in registration order.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	records, err := r.store.List(ctx, usersCollection)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

// BanUser marks the user banned with a reason. Existing records remain.
func (r *Repository) BanUser(ctx context.Context, customerID, reason string) (User, error) {
	return r.setBan(ctx, customerID, true, reason)
}

// UnbanUser lifts a ban and clears the reason.
func (r *Repository) UnbanUser(ctx context.Context, customerID string) (User, error) {
	return r.setBan(ctx, customerID, false, "")
}

func (r *Repository) setBan(ctx context.Context, customerID string, banned bool, reason string) (User, error) {
	n, err := r.store.UpdateWhere(ctx, usersCollection,
		func(rec store.Record) bool { return rec["customer_id"] == customerID },
		func(rec store.Record) {
			rec["is_banned"] = activeValue(banned)
			rec["ban_reason"] = reason
		})
	if err != nil {
		return User{}, fmt.Errorf("update ban flag: %w", err)
	}
	if n == 0 {
		return User{}, ErrNotFound
	}
	return r.UserByCustomerID(ctx, customerID)
}

// SetLanguage switches the menu language for a user.
func (r *Repository) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	if language != "ar" && language != "en" {
		return validationf("unknown language %q", language)
	}
	id := strconv.FormatInt(telegramID, 10)
	n, err := r.store.UpdateWhere(ctx, usersCollection,
		func(rec store.Record) bool { return rec["telegram_id"] == id },
		func(rec store.Record) { rec["language"] = language })
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
