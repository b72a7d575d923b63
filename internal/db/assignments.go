package db

import (
	"context"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(gdb *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: gdb}
}

// FindByOrgName looks up an assignment by the org's GitHub name (the
// repo owner seen in webhook payloads).
func (r *AssignmentRepository) FindByOrgName(ctx context.Context, orgName, name string) (*Assignment, error) {
	var org ClassroomOrg
	if err := r.db.WithContext(ctx).Where("name = ?", orgName).First(&org).Error; err != nil {
		return nil, err
	}
	return r.FindByOrgID(ctx, org.ID, name)
}

// FindByOrgID looks up an assignment by the org's GitHub id.
func (r *AssignmentRepository) FindByOrgID(ctx context.Context, orgID int64, name string) (*Assignment, error) {
	var assignment Assignment
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, name).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// OrgName returns the GitHub name of the org owning the assignment.
func (r *AssignmentRepository) OrgName(ctx context.Context, orgID int64) (string, error) {
	var org ClassroomOrg
	if err := r.db.WithContext(ctx).First(&org, orgID).Error; err != nil {
		return "", err
	}
	return org.Name, nil
}
