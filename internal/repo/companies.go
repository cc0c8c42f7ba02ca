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

const companiesCacheKey = "companies:active"

// AddCompany creates a company offering deposit, withdraw or both.
func (r *Repository) AddCompany(ctx context.Context, name, serviceType, details string) (Company, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return Company{}, validationf("company name too short")
	}
	switch serviceType {
	case ServiceDeposit, ServiceWithdraw, ServiceBoth:
	default:
		return Company{}, validationf("unknown service type %q", serviceType)
	}

	id, err := r.nextCompanyID(ctx)
	if err != nil {
		return Company{}, err
	}
	company := Company{
		ID:          id,
		Name:        name,
		ServiceType: serviceType,
		Details:     strings.TrimSpace(details),
		IsActive:    true,
	}
	if err := r.store.Append(ctx, companiesCollection, company.record()); err != nil {
		return Company{}, fmt.Errorf("add company: %w", err)
	}
	r.cache.Invalidate(ctx, companiesCacheKey)
	return company, nil
}

func (r *Repository) nextCompanyID(ctx context.Context) (string, error) {
	records, err := r.store.List(ctx, companiesCollection)
	if err != nil {
		return "", fmt.Errorf("next company id: %w", err)
	}
	var max int64
	for _, rec := range records {
		if n, err := strconv.ParseInt(rec["id"], 10, 64); err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// CompanyByID fetches a company.
func (r *Repository) CompanyByID(ctx context.Context, id string) (Company, error) {
	rec, err := store.FindOne(ctx, r.store, companiesCollection, func(rec store.Record) bool {
		return rec["id"] == id
	})
	if errors.Is(err, store.ErrNoRecord) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("find company: %w", err)
	}
	return companyFromRecord(rec), nil
}

// CompanyByName fetches an active company by exact name.
func (r *Repository) CompanyByName(ctx context.Context, name string) (Company, error) {
	rec, err := store.FindOne(ctx, r.store, companiesCollection, func(rec store.Record) bool {
		return rec["name"] == name
	})
	if errors.Is(err, store.ErrNoRecord) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("find company: %w", err)
	}
	return companyFromRecord(rec), nil
}

// ActiveCompanies lists active companies able to serve the given kind
// (deposit or withdraw); empty kind means all active companies. Results
// are cached briefly because every menu render hits this.
func (r *Repository) ActiveCompanies(ctx context.Context, kind string) ([]Company, error) {
	var all []Company
	hit, err := r.cache.GetJSON(ctx, companiesCacheKey, &all)
	if err != nil {
		r.logger.Warn("companies cache read failed", "error", err)
		hit = false
	}
	if !hit {
		records, err := store.FindAll(ctx, r.store, companiesCollection, func(rec store.Record) bool {
			return isActiveValue(rec["is_active"])
		})
		if err != nil {
			return nil, fmt.Errorf("list companies: %w", err)
		}
		all = make([]Company, 0, len(records))
		for _, rec := range records {
			all = append(all, companyFromRecord(rec))
		}
		if err := r.cache.SetJSON(ctx, companiesCacheKey, all, time.Minute); err != nil {
			r.logger.Warn("companies cache write failed", "error", err)
		}
	}

	if kind == "" {
		return all, nil
	}
	filtered := make([]Company, 0, len(all))
	for _, c := range all {
		if c.ServiceType == kind || c.ServiceType == ServiceBoth {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// ListCompanies returns every company, active or not.
func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	records, err := r.store.List(ctx, companiesCollection)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies := make([]Company, 0, len(records))
	for _, rec := range records {
		companies = append(companies, companyFromRecord(rec))
	}
	return companies, nil
}

// UpdateCompany rewrites name/type/details for one company. Empty fields
// keep their current value.
func (r *Repository) UpdateCompany(ctx context.Context, id, name, serviceType, details string) (Company, error) {
	if serviceType != "" {
		switch serviceType {
		case ServiceDeposit, ServiceWithdraw, ServiceBoth:
		default:
			return Company{}, validationf("unknown service type %q", serviceType)
		}
	}
	n, err := r.store.UpdateWhere(ctx, companiesCollection,
		func(rec store.Record) bool { return rec["id"] == id },
		func(rec store.Record) {
			if name != "" {
				rec["name"] = name
			}
			if serviceType != "" {
				rec["service_type"] = serviceType
			}
			if details != "" {
				rec["details"] = details
			}
		})
	if err != nil {
		return Company{}, fmt.Errorf("update company: %w", err)
	}
	if n == 0 {
		return Company{}, ErrNotFound
	}
	r.cache.Invalidate(ctx, companiesCacheKey)
	return r.CompanyByID(ctx, id)
}

// DeleteCompany removes the company and cascade-deletes its payment
// methods so no method is left pointing at a missing company.
func (r *Repository) DeleteCompany(ctx context.Context, id string) (Company, int, error) {
	company, err := r.CompanyByID(ctx, id)
	if err != nil {
		return Company{}, 0, err
	}

	methods, err := r.store.DeleteWhere(ctx, paymentMethodsCollection, func(rec store.Record) bool {
		return rec["company_id"] == id
	})
	if err != nil {
		return Company{}, 0, fmt.Errorf("delete company methods: %w", err)
	}

	if _, err := r.store.DeleteWhere(ctx, companiesCollection, func(rec store.Record) bool {
		return rec["id"] == id
	}); err != nil {
		return Company{}, 0, fmt.Errorf("delete company: %w", err)
	}
	r.cache.Invalidate(ctx, companiesCacheKey)
	return company, methods, nil
}
