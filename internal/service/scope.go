package service

import (
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

// visibleTasks shapes the task query for a caller exactly once per request:
// scrum masters see every task in an active project, employees see tasks they
// hold directly or through an active assignment. All aggregation downstream
// runs over this scope and is role-independent.
func visibleTasks(db *gorm.DB, user *model.User) *gorm.DB {
	q := db.Model(&model.Task{}).
		Where("tasks.project_id IN (SELECT id FROM projects WHERE is_active = ?)", true)
	if user.IsScrumMaster() {
		return q
	}
	return q.Where(
		"tasks.assignee_id = ? OR tasks.id IN (SELECT task_id FROM task_assignments WHERE user_id = ? AND is_active = ?)",
		user.ID, user.ID, true,
	)
}

// visibleProjectIDs returns the active projects the user belongs to: created
// projects and active memberships for everyone, plus projects reached through
// an active task assignment.
func visibleProjectIDs(db *gorm.DB, user *model.User) []uint {
	set := make(map[uint]struct{})

	var ids []uint
	db.Model(&model.Project{}).
		Where("created_by_id = ? AND is_active = ?", user.ID, true).
		Pluck("id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	ids = ids[:0]
	db.Model(&model.ProjectMember{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Where("project_id IN (SELECT id FROM projects WHERE is_active = ?)", true).
		Pluck("project_id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	ids = ids[:0]
	db.Model(&model.TaskAssignment{}).
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("task_assignments.user_id = ? AND task_assignments.is_active = ?", user.ID, true).
		Where("tasks.project_id IN (SELECT id FROM projects WHERE is_active = ?)", true).
		Pluck("tasks.project_id", &ids)
	for _, id := range ids {
		set[id] = struct{}{}
	}

	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
