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

// AddPaymentMethod attaches a payment method to an existing company.
func (r *Repository) AddPaymentMethod(ctx context.Context, companyID, name, methodType, accountData, info string) (PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PaymentMethod{}, validationf("method name is empty")
	}
	if strings.TrimSpace(accountData) == "" {
		return PaymentMethod{}, validationf("account data is empty")
	}
	if _, err := r.CompanyByID(ctx, companyID); err != nil {
		return PaymentMethod{}, err
	}

	id, err := r.nextMethodID(ctx)
	if err != nil {
		return PaymentMethod{}, err
	}
	method := PaymentMethod{
		ID:             id,
		CompanyID:      companyID,
		MethodName:     name,
		MethodType:     strings.TrimSpace(methodType),
		AccountData:    strings.TrimSpace(accountData),
		AdditionalInfo: strings.TrimSpace(info),
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	if err := r.store.Append(ctx, paymentMethodsCollection, method.record()); err != nil {
		return PaymentMethod{}, fmt.Errorf("add payment method: %w", err)
	}
	return method, nil
}

func (r *Repository) nextMethodID(ctx context.Context) (string, error) {
	records, err := r.store.List(ctx, paymentMethodsCollection)
	if err != nil {
		return "", fmt.Errorf("next method id: %w", err)
	}
	var max int64
	for _, rec := range records {
		if n, err := strconv.ParseInt(rec["id"], 10, 64); err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// PaymentMethodByID fetches one method.
func (r *Repository) PaymentMethodByID(ctx context.Context, id string) (PaymentMethod, error) {
	rec, err := store.FindOne(ctx, r.store, paymentMethodsCollection, func(rec store.Record) bool {
		return rec["id"] == id
	})
	if errors.Is(err, store.ErrNoRecord) {
		return PaymentMethod{}, ErrNotFound
	}
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("find payment method: %w", err)
	}
	return paymentMethodFromRecord(rec), nil
}

// ActiveMethodsByCompany lists the active methods of a company.
func (r *Repository) ActiveMethodsByCompany(ctx context.Context, companyID string) ([]PaymentMethod, error) {
	records, err := store.FindAll(ctx, r.store, paymentMethodsCollection, func(rec store.Record) bool {
		return rec["company_id"] == companyID && isActiveValue(rec["is_active"])
	})
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	methods := make([]PaymentMethod, 0, len(records))
	for _, rec := range records {
		methods = append(methods, paymentMethodFromRecord(rec))
	}
	return methods, nil
}

// ListPaymentMethods returns all methods of all companies.
func (r *Repository) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	records, err := r.store.List(ctx, paymentMethodsCollection)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	methods := make([]PaymentMethod, 0, len(records))
	for _, rec := range records {
		methods = append(methods, paymentMethodFromRecord(rec))
	}
	return methods, nil
}

// UpdatePaymentMethod replaces the editable fields of a method. Empty
// fields keep their current value.
func (r *Repository) UpdatePaymentMethod(ctx context.Context, id, name, methodType, accountData, info string) (PaymentMethod, error) {
	n, err := r.store.UpdateWhere(ctx, paymentMethodsCollection,
		func(rec store.Record) bool { return rec["id"] == id },
		func(rec store.Record) {
			if name != "" {
				rec["method_name"] = name
			}
			if methodType != "" {
				rec["method_type"] = methodType
			}
			if accountData != "" {
				rec["account_data"] = accountData
			}
			if info != "" {
				rec["additional_info"] = info
			}
		})
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("update payment method: %w", err)
	}
	if n == 0 {
		return PaymentMethod{}, ErrNotFound
	}
	return r.PaymentMethodByID(ctx, id)
}

// DeletePaymentMethod removes one method.
func (r *Repository) DeletePaymentMethod(ctx context.Context, id string) error {
	n, err := r.store.DeleteWhere(ctx, paymentMethodsCollection, func(rec store.Record) bool {
		return rec["id"] == id
	})
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
