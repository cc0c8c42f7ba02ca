package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"langsense-bot/internal/store"
)

// CreateComplaint files a complaint for the given user.
func (r *Repository) CreateComplaint(ctx context.Context, user User, message string) (Complaint, error) {
	if user.IsBanned {
		return Complaint{}, ErrBanned
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Complaint{}, validationf("complaint message is empty")
	}

	stamp := r.stamps.next()
	complaint := Complaint{
		ID:         complaintID(stamp),
		CustomerID: user.CustomerID,
		Message:    message,
		Status:     StatusPending,
		CreatedAt:  stamp,
	}
	if err := r.store.Append(ctx, complaintsCollection, complaint.record()); err != nil {
		return Complaint{}, fmt.Errorf("create complaint: %w", err)
	}
	return complaint, nil
}

// ComplaintByID fetches one complaint.
func (r *Repository) ComplaintByID(ctx context.Context, id string) (Complaint, error) {
	rec, err := store.FindOne(ctx, r.store, complaintsCollection, func(rec store.Record) bool {
		return rec["id"] == id
	})
	if errors.Is(err, store.ErrNoRecord) {
		return Complaint{}, ErrNotFound
	}
	if err != nil {
		return Complaint{}, fmt.Errorf("find complaint: %w", err)
	}
	return complaintFromRecord(rec), nil
}

// PendingComplaints lists complaints awaiting an answer.
func (r *Repository) PendingComplaints(ctx context.Context) ([]Complaint, error) {
	records, err := store.FindAll(ctx, r.store, complaintsCollection, func(rec store.Record) bool {
		return rec["status"] == StatusPending
	})
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	complaints := make([]Complaint, 0, len(records))
	for _, rec := range records {
		complaints = append(complaints, complaintFromRecord(rec))
	}
	return complaints, nil
}

// AnswerComplaint records the admin response exactly once.
func (r *Repository) AnswerComplaint(ctx context.Context, id, response string) (Complaint, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return Complaint{}, validationf("response is empty")
	}

	current, err := r.ComplaintByID(ctx, id)
	if err != nil {
		return Complaint{}, err
	}
	if current.Status != StatusPending {
		return Complaint{}, ErrAlreadyProcessed
	}

	n, err := r.store.UpdateWhere(ctx, complaintsCollection,
		func(rec store.Record) bool {
			return rec["id"] == id && rec["status"] == StatusPending
		},
		func(rec store.Record) {
			rec["status"] = StatusAnswered
			rec["admin_response"] = response
		})
	if err != nil {
		return Complaint{}, fmt.Errorf("answer complaint: %w", err)
	}
	if n == 0 {
		return Complaint{}, ErrAlreadyProcessed
	}
	return r.ComplaintByID(ctx, id)
}
