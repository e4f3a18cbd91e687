package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

type ProjectService struct {
	db      *gorm.DB
	members *MembershipResolver
}

func NewProjectService(db *gorm.DB, members *MembershipResolver) *ProjectService {
	return &ProjectService{db: db, members: members}
}

func (s *ProjectService) Create(name, description string, createdByID uint, memberIDs []uint) (*model.Project, error) {
	project := &model.Project{
		Name:        name,
		Description: description,
		CreatedByID: createdByID,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.ProjectMember{
			ProjectID: project.ID,
			UserID:    createdByID,
			Role:      model.RoleScrumMaster,
			IsActive:  true,
		}).Error; err != nil {
			return err
		}
		for _, uid := range memberIDs {
			if uid == createdByID {
				continue
			}
			if err := tx.Create(&model.ProjectMember{
				ProjectID: project.ID,
				UserID:    uid,
				Role:      model.RoleEmployee,
				IsActive:  true,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("CreatedBy").First(project, project.ID)
	return project, nil
}

// List returns the caller's visible active projects: all of them for scrum
// masters, membership- or assignment-linked ones for employees.
func (s *ProjectService) List(user *model.User) ([]model.Project, error) {
	query := s.db.Model(&model.Project{}).Where("is_active = ?", true).Preload("CreatedBy")
	if !user.IsScrumMaster() {
		query = query.Where(
			"id IN (SELECT project_id FROM project_members WHERE user_id = ? AND is_active = ?)"+
				" OR id IN (SELECT tasks.project_id FROM task_assignments JOIN tasks ON tasks.id = task_assignments.task_id"+
				" WHERE task_assignments.user_id = ? AND task_assignments.is_active = ?)",
			user.ID, true, user.ID, true,
		)
	}

	var projects []model.Project
	if err := query.Order("created_at desc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) GetByID(id uint) (*model.Project, error) {
	var project model.Project
	err := s.db.Where("is_active = ?", true).
		Preload("CreatedBy").
		Preload("Members", "is_active = ?", true).
		Preload("Members.User").
		First(&project, id).Error
	if err != nil {
		return nil, fmt.Errorf("40402:project not found")
	}
	return &project, nil
}

// GetVisible applies the caller's access scope: projects an employee neither
// belongs to nor holds tasks in read as absent.
func (s *ProjectService) GetVisible(id uint, user *model.User) (*model.Project, error) {
	if !user.IsScrumMaster() && !s.CanAccess(id, user) {
		return nil, fmt.Errorf("40402:project not found")
	}
	return s.GetByID(id)
}

func (s *ProjectService) Update(id uint, updates map[string]interface{}) (*model.Project, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Deactivate soft-deletes: every aggregation filters on is_active.
func (s *ProjectService) Deactivate(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.db.Model(&model.Project{}).Where("id = ?", id).Update("is_active", false).Error
}

func (s *ProjectService) Members(projectID uint) ([]model.ProjectMember, error) {
	if _, err := s.GetByID(projectID); err != nil {
		return nil, err
	}
	var members []model.ProjectMember
	err := s.db.Preload("User").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("joined_at desc").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *ProjectService) AddMember(projectID, userID uint, role string) (*model.ProjectMember, error) {
	if _, err := s.GetByID(projectID); err != nil {
		return nil, err
	}
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("40401:user not found")
	}
	if role == "" {
		role = model.RoleEmployee
	}

	var existing model.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			return nil, fmt.Errorf("40005:user is already a project member")
		}
		if err := s.db.Model(&existing).Updates(map[string]interface{}{"is_active": true, "role": role}).Error; err != nil {
			return nil, err
		}
		existing.User = &user
		return &existing, nil
	}

	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		IsActive:  true,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	member.User = &user
	return member, nil
}

// RemoveMember deactivates the membership row. An active task assignment
// keeps the user associated with the project regardless.
func (s *ProjectService) RemoveMember(projectID, userID uint) error {
	result := s.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("40401:user is not a project member")
	}
	return nil
}

func (s *ProjectService) TaskCount(projectID uint) int64 {
	var count int64
	s.db.Model(&model.Task{}).Where("project_id = ?", projectID).Count(&count)
	return count
}

// CanAccess reports whether the user may read project-scoped resources such
// as messages: the creator, an active member, or an active task assignee.
func (s *ProjectService) CanAccess(projectID uint, user *model.User) bool {
	var project model.Project
	if err := s.db.Where("is_active = ?", true).First(&project, projectID).Error; err != nil {
		return false
	}
	if project.CreatedByID == user.ID {
		return true
	}

	var count int64
	s.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, user.ID, true).
		Count(&count)
	if count > 0 {
		return true
	}

	s.db.Model(&model.TaskAssignment{}).
		Where("user_id = ? AND is_active = ? AND task_id IN (SELECT id FROM tasks WHERE project_id = ?)",
			user.ID, true, projectID).
		Count(&count)
	return count > 0
}
