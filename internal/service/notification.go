package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/model"
)

const feedLimit = 20

type FeedItem struct {
	Type        string    `json:"type"`
	ID          uint      `json:"id"`
	TaskID      uint      `json:"task_id,omitempty"`
	TaskTitle   string    `json:"task_title,omitempty"`
	ProjectID   uint      `json:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
	UserName    string    `json:"user_name,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationFeed merges task activity, project messages and due-soon tasks
// into one reverse-chronological feed, capped at 20 items overall.
type NotificationFeed struct {
	db *gorm.DB
}

func NewNotificationFeed(db *gorm.DB) *NotificationFeed {
	return &NotificationFeed{db: db}
}

func (f *NotificationFeed) Feed(user *model.User) ([]FeedItem, error) {
	now := time.Now()
	items := f.activityItems(user)
	items = append(items, f.messageItems(user)...)
	items = append(items, f.dueSoonItems(user, now)...)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > feedLimit {
		items = items[:feedLimit]
	}
	return items, nil
}

func (f *NotificationFeed) activityItems(user *model.User) []FeedItem {
	var activities []model.TaskActivity
	f.db.Preload("Task").Preload("User").
		Where("task_id IN (?)", visibleTasks(f.db, user).Select("tasks.id")).
		Order("created_at desc").Limit(feedLimit).
		Find(&activities)

	items := make([]FeedItem, 0, len(activities))
	for _, a := range activities {
		item := FeedItem{
			Type:        "activity",
			ID:          a.ID,
			TaskID:      a.TaskID,
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
		}
		if a.Task != nil {
			item.TaskTitle = a.Task.Title
		}
		if a.User != nil {
			item.UserName = a.User.FullName()
		}
		items = append(items, item)
	}
	return items
}

func (f *NotificationFeed) messageItems(user *model.User) []FeedItem {
	projectIDs := visibleProjectIDs(f.db, user)
	if len(projectIDs) == 0 {
		return nil
	}

	var messages []model.ProjectMessage
	f.db.Preload("Author").Preload("Project").
		Where("project_id IN ?", projectIDs).
		Order("created_at desc").Limit(feedLimit).
		Find(&messages)

	items := make([]FeedItem, 0, len(messages))
	for _, m := range messages {
		item := FeedItem{
			Type:      "message",
			ID:        m.ID,
			ProjectID: m.ProjectID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.Project != nil {
			item.ProjectName = m.Project.Name
		}
		if m.Author != nil {
			item.AuthorName = m.Author.FullName()
		}
		items = append(items, item)
	}
	return items
}

func (f *NotificationFeed) dueSoonItems(user *model.User, now time.Time) []FeedItem {
	soon := now.Add(48 * time.Hour)
	var tasks []model.Task
	visibleTasks(f.db, user).Preload("Project").
		Where("due_date IS NOT NULL AND due_date <= ? AND status IN ?", soon,
			[]string{model.StatusTodo, model.StatusInProgress}).
		Order("due_date asc").Limit(feedLimit).
		Find(&tasks)

	items := make([]FeedItem, 0, len(tasks))
	for _, t := range tasks {
		item := FeedItem{
			Type:      "due_soon",
			ID:        t.ID,
			TaskID:    t.ID,
			TaskTitle: t.Title,
			Content:   fmt.Sprintf("Task %q is due %s", t.Title, humanETA(*t.DueDate, now)),
			CreatedAt: now,
		}
		if t.Project != nil {
			item.ProjectName = t.Project.Name
		}
		items = append(items, item)
	}
	return items
}

// humanETA renders a due timestamp as "now", "in Nh" under a day, or "in Nd".
func humanETA(due, now time.Time) string {
	hours := int(math.Floor(due.Sub(now).Hours()))
	if hours <= 0 {
		return "now"
	}
	if hours < 24 {
		return fmt.Sprintf("in %dh", hours)
	}
	return fmt.Sprintf("in %dd", hours/24)
}
