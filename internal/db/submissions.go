package db

import (
	"context"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(gdb *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: gdb}
}

// InsertGraded inserts a submission and its 1:1 code-submission extension
// in one transaction: both rows become visible atomically or not at all.
// A duplicate head SHA fails the whole transaction with a duplicate-key
// error; nothing is overwritten.
func (r *SubmissionRepository) InsertGraded(ctx context.Context, sub *Submission, code *CodeSubmission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		code.ID = sub.ID
		return tx.Create(code).Error
	})
}
