package repository

import (
	"context"
	"errors"
	"fmt"

	"pettycash/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmployeeIDsExhausted is returned once LastEmployeeID has been handed out.
var ErrEmployeeIDsExhausted = errors.New("employee id range exhausted")

// EmployeeIDAllocator hands out unique employee ids.
type EmployeeIDAllocator interface {
	// Allocate reserves the next id. Concurrent callers never receive the same value.
	Allocate(ctx context.Context) (int, error)
	// Peek returns the id Allocate would hand out now, without reserving it.
	Peek(ctx context.Context) (int, error)
}

type employeeIDAllocator struct {
	db       *gorm.DB
	tx       TransactionManager
	profiles ProfileRepository
}

func NewEmployeeIDAllocator(db *gorm.DB, tx TransactionManager, profiles ProfileRepository) EmployeeIDAllocator {
	return &employeeIDAllocator{db: db, tx: tx, profiles: profiles}
}

func (a *employeeIDAllocator) ensureSequence(ctx context.Context) error {
	seq := model.EmployeeIDSequence{Name: model.EmployeeIDSequenceName}
	return GetDB(ctx, a.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seq).Error
}

func (a *employeeIDAllocator) Allocate(ctx context.Context) (int, error) {
	if err := a.ensureSequence(ctx); err != nil {
		return 0, fmt.Errorf("ensure employee id sequence: %w", err)
	}

	var next int
	err := a.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var seq model.EmployeeIDSequence
		if err := GetDB(txCtx, a.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "name = ?", model.EmployeeIDSequenceName).Error; err != nil {
			return fmt.Errorf("lock employee id sequence: %w", err)
		}

		base, err := a.base(txCtx, seq.LastValue)
		if err != nil {
			return err
		}
		if base != nil && *base >= model.LastEmployeeID {
			return ErrEmployeeIDsExhausted
		}

		next = model.NextEmployeeID(base)
		return GetDB(txCtx, a.db).
			Model(&model.EmployeeIDSequence{}).
			Where("name = ?", model.EmployeeIDSequenceName).
			Update("last_value", next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (a *employeeIDAllocator) Peek(ctx context.Context) (int, error) {
	var seq model.EmployeeIDSequence
	err := GetDB(ctx, a.db).First(&seq, "name = ?", model.EmployeeIDSequenceName).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	base, err := a.base(ctx, seq.LastValue)
	if err != nil {
		return 0, err
	}
	return model.NextEmployeeID(base), nil
}

// base is the larger of the sequence value and the highest id already on a profile,
// so ids assigned outside the allocator are never reissued.
func (a *employeeIDAllocator) base(ctx context.Context, lastValue int) (*int, error) {
	max, err := a.profiles.MaxEmployeeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read max employee id: %w", err)
	}
	if lastValue >= model.FirstEmployeeID && (max == nil || lastValue > *max) {
		return &lastValue, nil
	}
	return max, nil
}
