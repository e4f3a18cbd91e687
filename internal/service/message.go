package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

type MessageService struct {
	db       *gorm.DB
	projects *ProjectService
}

func NewMessageService(db *gorm.DB, projects *ProjectService) *MessageService {
	return &MessageService{db: db, projects: projects}
}

func (s *MessageService) List(projectID uint, user *model.User) ([]model.ProjectMessage, error) {
	if !s.projects.CanAccess(projectID, user) {
		return nil, fmt.Errorf("40302:not a project member or task assignee")
	}
	var messages []model.ProjectMessage
	err := s.db.Preload("Author").
		Where("project_id = ?", projectID).
		Order("created_at asc").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageService) Post(projectID uint, user *model.User, content string) (*model.ProjectMessage, error) {
	if !s.projects.CanAccess(projectID, user) {
		return nil, fmt.Errorf("40302:not a project member or task assignee")
	}
	message := &model.ProjectMessage{
		ProjectID: projectID,
		AuthorID:  user.ID,
		Content:   content,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}
	message.Author = user
	return message, nil
}
