package services

import (
	"context"
	"errors"
	"strings"

	"office-panel/internal/audit"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// txStep runs inside the write transaction, next to the main statement.
type txStep func(tx *gorm.DB) error

// writer is the only path through which services mutate watched records. Each
// write runs in its own transaction and reports to the audit observer after it
// commits, so the observer never sees uncommitted rows.
type writer struct {
	db       *gorm.DB
	observer *audit.Observer
}

func newWriter(db *gorm.DB, observer *audit.Observer) *writer {
	return &writer{db: db, observer: observer}
}

func (w *writer) create(ctx context.Context, entity any, after ...txStep) error {
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return err
		}
		return runSteps(tx, after)
	})
	if err != nil {
		return err
	}
	w.observer.Saved(ctx, entity, true)
	return nil
}

func (w *writer) update(ctx context.Context, entity any, after ...txStep) error {
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
			return err
		}
		return runSteps(tx, after)
	})
	if err != nil {
		return err
	}
	w.observer.Saved(ctx, entity, false)
	return nil
}

// delete runs before inside the transaction ahead of the DELETE, for clearing
// references that the database does not cascade. A row that is already gone
// rolls the transaction back with ErrNotFound and is not reported.
func (w *writer) delete(ctx context.Context, entity any, before ...txStep) error {
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := runSteps(tx, before); err != nil {
			return err
		}
		res := tx.Delete(entity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(recordName(entity))
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.observer.Deleted(ctx, entity)
	return nil
}

func recordName(entity any) string {
	if e, ok := entity.(interface{ AuditLabel() string }); ok {
		return strings.ToLower(e.AuditLabel())
	}
	return "record"
}

func runSteps(tx *gorm.DB, steps []txStep) error {
	for _, step := range steps {
		if err := step(tx); err != nil {
			return err
		}
	}
	return nil
}

// findByID loads one record or returns an ErrNotFound naming what.
func findByID[T any](ctx context.Context, db *gorm.DB, id uint, what string, preloads ...string) (*T, error) {
	var record T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(what)
		}
		return nil, err
	}
	return &record, nil
}

// authorize applies the policy table to the actor bound to ctx.
func authorize(ctx context.Context, res policy.Resource, op policy.Operation, ownerID *uint) error {
	return policy.Check(requestcontext.Actor(ctx), res, op, ownerID)
}
