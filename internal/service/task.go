package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

type TaskFilters struct {
	Status    string
	Priority  string
	ProjectID *uint
	Search    string
	SortBy    string
	Order     string
}

type KanbanBoard struct {
	Todo       []model.Task `json:"todo"`
	InProgress []model.Task `json:"in_progress"`
	Review     []model.Task `json:"review"`
	Done       []model.Task `json:"done"`
}

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

func (s *TaskService) Create(creator *model.User, title, description string, projectID uint, priority string, dueDate *time.Time, assigneeIDs []uint) (*model.Task, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, fmt.Errorf("40001:invalid priority")
	}

	var project model.Project
	if err := s.db.Where("is_active = ?", true).First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("40402:project not found")
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		ProjectID:   projectID,
		CreatedByID: creator.ID,
		Priority:    priority,
		Status:      model.StatusTodo,
		DueDate:     dueDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if err := syncAssignees(tx, task, creator.ID, assigneeIDs); err != nil {
			return err
		}
		return tx.Create(&model.TaskActivity{
			TaskID:       task.ID,
			UserID:       creator.ID,
			ActivityType: model.ActivityCreated,
			Description:  fmt.Sprintf("Task %q created", task.Title),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.loaded(task.ID)
}

func (s *TaskService) List(user *model.User, filters TaskFilters) ([]model.Task, error) {
	query := visibleTasks(s.db, user).
		Preload("Assignee").Preload("Project").Preload("Assignments", "is_active = ?", true)

	if filters.Status != "" {
		query = query.Where("tasks.status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("tasks.priority = ?", filters.Priority)
	}
	if filters.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filters.ProjectID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("tasks.title LIKE ? OR tasks.description LIKE ?", like, like)
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "updated_at", "due_date", "priority":
	default:
		sortBy = "created_at"
	}
	order := filters.Order
	if order != "asc" {
		order = "desc"
	}

	var tasks []model.Task
	if err := query.Order("tasks." + sortBy + " " + order).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get applies the caller's visibility scope; tasks outside it read as absent.
func (s *TaskService) Get(id uint, user *model.User) (*model.Task, error) {
	var task model.Task
	err := visibleTasks(s.db, user).
		Preload("Assignee").Preload("CreatedBy").Preload("Project").
		Preload("Assignments", "is_active = ?", true).
		Preload("Assignments.User").
		Preload("Comments").Preload("Comments.Author").
		Where("tasks.id = ?", id).First(&task).Error
	if err != nil {
		return nil, fmt.Errorf("40403:task not found")
	}
	return &task, nil
}

// Update applies role rules: scrum masters may change anything, employees
// only the status of tasks they hold.
func (s *TaskService) Update(id uint, user *model.User, updates map[string]interface{}) (*model.Task, error) {
	task, err := s.Get(id, user)
	if err != nil {
		return nil, err
	}

	if user.IsEmployee() {
		if !s.holdsTask(task, user.ID) {
			return nil, fmt.Errorf("40303:you can only update your assigned tasks")
		}
		for field := range updates {
			if field != "status" {
				return nil, fmt.Errorf("40304:you cannot update %s", field)
			}
		}
	}

	if v, ok := updates["status"]; ok {
		status, _ := v.(string)
		if !model.ValidStatus(status) {
			return nil, fmt.Errorf("40001:invalid status")
		}
		if status != task.Status {
			return s.changeStatus(task, user, status)
		}
		delete(updates, "status")
	}
	if v, ok := updates["priority"]; ok {
		if p, _ := v.(string); !model.ValidPriority(p) {
			return nil, fmt.Errorf("40001:invalid priority")
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
		if _, dueChanged := updates["due_date"]; dueChanged {
			s.db.Create(&model.TaskActivity{
				TaskID:       task.ID,
				UserID:       user.ID,
				ActivityType: model.ActivityDueDateChanged,
				Description:  "Due date changed",
			})
		}
	}
	return s.loaded(id)
}

func (s *TaskService) UpdateStatus(id uint, user *model.User, status string) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("40001:invalid status")
	}
	task, err := s.Get(id, user)
	if err != nil {
		return nil, err
	}
	if user.IsEmployee() && !s.holdsTask(task, user.ID) {
		return nil, fmt.Errorf("40303:you can only update your assigned tasks")
	}
	if status == task.Status {
		return task, nil
	}
	return s.changeStatus(task, user, status)
}

func (s *TaskService) changeStatus(task *model.Task, user *model.User, status string) (*model.Task, error) {
	old := task.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Create(&model.TaskActivity{
			TaskID:       task.ID,
			UserID:       user.ID,
			ActivityType: model.ActivityStatusChanged,
			Description:  fmt.Sprintf("Status changed from %s to %s", old, status),
			OldValue:     old,
			NewValue:     status,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.loaded(task.ID)
}

func (s *TaskService) Delete(id uint) error {
	var task model.Task
	if err := s.db.First(&task, id).Error; err != nil {
		return fmt.Errorf("40403:task not found")
	}
	return s.db.Delete(&task).Error
}

// SetAssignees replaces the active assignment set. TaskAssignment rows are
// the source of truth; the task's assignee column is re-derived afterwards.
func (s *TaskService) SetAssignees(taskID uint, actor *model.User, userIDs []uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		return nil, fmt.Errorf("40403:task not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return syncAssignees(tx, &task, actor.ID, userIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.loaded(taskID)
}

// syncAssignees deactivates stale rows, activates or creates wanted ones, and
// rewrites the derived assignee column from the first active assignment.
func syncAssignees(tx *gorm.DB, task *model.Task, actorID uint, userIDs []uint) error {
	wanted := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	var existing []model.TaskAssignment
	if err := tx.Where("task_id = ?", task.ID).Find(&existing).Error; err != nil {
		return err
	}
	have := make(map[uint]*model.TaskAssignment, len(existing))
	for i := range existing {
		have[existing[i].UserID] = &existing[i]
	}

	for uid, row := range have {
		if !wanted[uid] && row.IsActive {
			if err := tx.Model(row).Update("is_active", false).Error; err != nil {
				return err
			}
		}
	}
	for _, uid := range userIDs {
		var user model.User
		if err := tx.First(&user, uid).Error; err != nil {
			return fmt.Errorf("40401:user not found: id=%d", uid)
		}
		if row, ok := have[uid]; ok {
			if !row.IsActive {
				if err := tx.Model(row).Update("is_active", true).Error; err != nil {
					return err
				}
			}
			continue
		}
		if err := tx.Create(&model.TaskAssignment{TaskID: task.ID, UserID: uid, IsActive: true}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.TaskActivity{
			TaskID:       task.ID,
			UserID:       actorID,
			ActivityType: model.ActivityAssigned,
			Description:  fmt.Sprintf("Assigned to %s", user.FullName()),
		}).Error; err != nil {
			return err
		}
	}

	var primary *uint
	if len(userIDs) > 0 {
		primary = &userIDs[0]
	}
	return tx.Model(&model.Task{}).Where("id = ?", task.ID).Update("assignee_id", primary).Error
}

func (s *TaskService) Comments(taskID uint, user *model.User) ([]model.TaskComment, error) {
	if _, err := s.Get(taskID, user); err != nil {
		return nil, err
	}
	var comments []model.TaskComment
	err := s.db.Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *TaskService) AddComment(taskID uint, user *model.User, content string) (*model.TaskComment, error) {
	if _, err := s.Get(taskID, user); err != nil {
		return nil, err
	}
	comment := &model.TaskComment{TaskID: taskID, AuthorID: user.ID, Content: content}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		excerpt := content
		if runes := []rune(content); len(runes) > 50 {
			excerpt = string(runes[:50]) + "..."
		}
		return tx.Create(&model.TaskActivity{
			TaskID:       taskID,
			UserID:       user.ID,
			ActivityType: model.ActivityCommented,
			Description:  fmt.Sprintf("Added a comment: %q", excerpt),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	comment.Author = user
	return comment, nil
}

// Kanban groups the caller's visible tasks by status for board display.
func (s *TaskService) Kanban(user *model.User, projectID *uint) (*KanbanBoard, error) {
	query := visibleTasks(s.db, user).Preload("Assignee").Preload("Project")
	if projectID != nil {
		query = query.Where("tasks.project_id = ?", *projectID)
	}
	var tasks []model.Task
	if err := query.Order("tasks.created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}

	board := &KanbanBoard{
		Todo:       []model.Task{},
		InProgress: []model.Task{},
		Review:     []model.Task{},
		Done:       []model.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			board.Todo = append(board.Todo, t)
		case model.StatusInProgress:
			board.InProgress = append(board.InProgress, t)
		case model.StatusReview:
			board.Review = append(board.Review, t)
		case model.StatusDone:
			board.Done = append(board.Done, t)
		}
	}
	return board, nil
}

func (s *TaskService) holdsTask(task *model.Task, userID uint) bool {
	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return true
	}
	var count int64
	s.db.Model(&model.TaskAssignment{}).
		Where("task_id = ? AND user_id = ? AND is_active = ?", task.ID, userID, true).
		Count(&count)
	return count > 0
}

func (s *TaskService) loaded(id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.Preload("Assignee").Preload("CreatedBy").Preload("Project").
		Preload("Assignments", "is_active = ?", true).
		Preload("Assignments.User").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}
