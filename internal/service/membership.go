package service

import (
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

// MembershipResolver computes the effective set of users associated with a
// project: active members, direct task assignees, and active TaskAssignment
// holders. Union semantics: an active assignment keeps a removed member
// associated, assignment implies association.
type MembershipResolver struct {
	db *gorm.DB
}

func NewMembershipResolver(db *gorm.DB) *MembershipResolver {
	return &MembershipResolver{db: db}
}

// EffectiveMemberIDs returns the associated user ids in no particular order.
// Callers sort for display.
func (r *MembershipResolver) EffectiveMemberIDs(projectID uint) []uint {
	set := make(map[uint]struct{})

	var ids []uint
	r.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Pluck("user_id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	ids = ids[:0]
	r.db.Model(&model.Task{}).
		Where("project_id = ? AND assignee_id IS NOT NULL", projectID).
		Distinct().Pluck("assignee_id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	ids = ids[:0]
	r.db.Model(&model.TaskAssignment{}).
		Where("is_active = ? AND task_id IN (SELECT id FROM tasks WHERE project_id = ?)", true, projectID).
		Distinct().Pluck("user_id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// EffectiveMemberCount is the size of the effective membership set.
func (r *MembershipResolver) EffectiveMemberCount(projectID uint) int {
	return len(r.EffectiveMemberIDs(projectID))
}
