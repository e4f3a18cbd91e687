package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/logger"
	"github.com/taskflow/backend/internal/metrics"
	"github.com/taskflow/backend/internal/model"
)

type StatusCounts struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Review     int `json:"review"`
	Done       int `json:"done"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type MemberStats struct {
	UserID          uint   `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	TotalAssigned   int    `json:"total_assigned"`
	CompletedTasks  int    `json:"completed_tasks"`
	InProgressTasks int    `json:"in_progress_tasks"`
	ReviewTasks     int    `json:"review_tasks"`
	TodoTasks       int    `json:"todo_tasks"`
}

// SkippedMember records a member dropped from an aggregation, instead of
// silently omitting it: partial results stay observable.
type SkippedMember struct {
	UserID uint   `json:"user_id"`
	Reason string `json:"reason"`
}

type TaskSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CompletedTask struct {
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completed_at"`
	CompletedBy string    `json:"completed_by"`
	Priority    string    `json:"priority"`
}

type ActivityItem struct {
	ID           uint      `json:"id"`
	TaskID       uint      `json:"task_id"`
	TaskTitle    string    `json:"task_title"`
	UserName     string    `json:"user_name"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProjectBrief struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectAnalytics struct {
	Project                ProjectBrief    `json:"project"`
	TotalTasks             int             `json:"total_tasks"`
	CompletedTasks         int             `json:"completed_tasks"`
	InProgressTasks        int             `json:"in_progress_tasks"`
	ReviewTasks            int             `json:"review_tasks"`
	TodoTasks              int             `json:"todo_tasks"`
	OverdueTasks           int             `json:"overdue_tasks"`
	TasksByPriority        []PriorityCount `json:"tasks_by_priority"`
	CompletionRate         float64         `json:"completion_rate"`
	TeamMembers            int             `json:"team_members"`
	RecentCompletedTasks   []CompletedTask `json:"recent_completed_tasks"`
	TeamPerformance        []MemberStats   `json:"team_performance"`
	Skipped                []SkippedMember `json:"skipped"`
	ProjectStartDate       time.Time       `json:"project_start_date"`
	LastActivity           time.Time       `json:"last_activity"`
	AvgTaskDuration        float64         `json:"avg_task_duration"`
	AvgTaskDurationMinutes float64         `json:"avg_task_duration_minutes"`
}

type MemberPerformance struct {
	MemberStats
	Role        string        `json:"role"`
	RecentTasks []TaskSummary `json:"recent_tasks"`
}

type MemberPerformanceReport struct {
	Project ProjectBrief        `json:"project"`
	Members []MemberPerformance `json:"members"`
	Skipped []SkippedMember     `json:"skipped"`
}

type TaskAnalyticsReport struct {
	TotalTasks             int             `json:"total_tasks"`
	CompletedTasks         int             `json:"completed_tasks"`
	InProgressTasks        int             `json:"in_progress_tasks"`
	ReviewTasks            int             `json:"review_tasks"`
	TodoTasks              int             `json:"todo_tasks"`
	OverdueTasks           int             `json:"overdue_tasks"`
	CompletionRate         float64         `json:"completion_rate"`
	TasksByAssignee        []MemberStats   `json:"tasks_by_assignee"`
	Skipped                []SkippedMember `json:"skipped"`
	TasksByPriority        []PriorityCount `json:"tasks_by_priority"`
	RecentActivities       []ActivityItem  `json:"recent_activities"`
	AvgTaskDuration        float64         `json:"avg_task_duration"`
	AvgTaskDurationMinutes float64         `json:"avg_task_duration_minutes"`
}

type AnalyticsService struct {
	db      *gorm.DB
	members *MembershipResolver
}

func NewAnalyticsService(db *gorm.DB, members *MembershipResolver) *AnalyticsService {
	return &AnalyticsService{db: db, members: members}
}

func projectBrief(p *model.Project) ProjectBrief {
	return ProjectBrief{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectAnalytics aggregates one project. Unexpected faults are recovered and
// surfaced as a scoped computation failure, never a crashed request.
func (s *AnalyticsService) ProjectAnalytics(projectID uint) (_ *ProjectAnalytics, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("project analytics panic: project=%d: %v", projectID, r)
			metrics.AnalyticsFailures.Inc()
			err = fmt.Errorf("50002:analytics computation failed")
		}
	}()

	var project model.Project
	if e := s.db.Where("is_active = ?", true).First(&project, projectID).Error; e != nil {
		return nil, fmt.Errorf("40402:project not found")
	}

	var tasks []model.Task
	s.db.Preload("Assignee").Where("project_id = ?", projectID).Find(&tasks)

	assigned := s.activeAssignmentSets(projectID)
	now := time.Now()

	counts := statusCounts(tasks)
	avgDays, avgMinutes := avgCompletionDuration(tasks)

	team, skipped := s.teamPerformance(tasks, assigned, s.members.EffectiveMemberIDs(projectID))

	out := &ProjectAnalytics{
		Project:                projectBrief(&project),
		TotalTasks:             counts.Total,
		CompletedTasks:         counts.Done,
		InProgressTasks:        counts.InProgress,
		ReviewTasks:            counts.Review,
		TodoTasks:              counts.Todo,
		OverdueTasks:           overdueCount(tasks, now),
		TasksByPriority:        priorityCounts(tasks),
		CompletionRate:         completionRate(counts.Done, counts.Total),
		TeamMembers:            len(team) + len(skipped),
		RecentCompletedTasks:   recentCompleted(tasks, 10),
		TeamPerformance:        team,
		Skipped:                skipped,
		ProjectStartDate:       project.CreatedAt,
		LastActivity:           project.UpdatedAt,
		AvgTaskDuration:        avgDays,
		AvgTaskDurationMinutes: avgMinutes,
	}
	return out, nil
}

// MemberPerformance is the per-member breakdown with each member's five most
// recently updated tasks.
func (s *AnalyticsService) MemberPerformance(projectID uint) (_ *MemberPerformanceReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("member performance panic: project=%d: %v", projectID, r)
			metrics.AnalyticsFailures.Inc()
			err = fmt.Errorf("50002:analytics computation failed")
		}
	}()

	var project model.Project
	if e := s.db.Where("is_active = ?", true).First(&project, projectID).Error; e != nil {
		return nil, fmt.Errorf("40402:project not found")
	}

	var tasks []model.Task
	s.db.Where("project_id = ?", projectID).Find(&tasks)
	assigned := s.activeAssignmentSets(projectID)

	roles := make(map[uint]string)
	var memberRows []model.ProjectMember
	s.db.Where("project_id = ? AND is_active = ?", projectID, true).Find(&memberRows)
	for _, m := range memberRows {
		roles[m.UserID] = m.Role
	}

	report := &MemberPerformanceReport{
		Project: projectBrief(&project),
		Members: []MemberPerformance{},
		Skipped: []SkippedMember{},
	}

	ids := s.members.EffectiveMemberIDs(projectID)
	for _, id := range ids {
		var user model.User
		if e := s.db.First(&user, id).Error; e != nil {
			report.Skipped = append(report.Skipped, SkippedMember{UserID: id, Reason: "user not found"})
			continue
		}
		memberTasks := tasksForUser(tasks, assigned, id)
		sort.Slice(memberTasks, func(i, j int) bool {
			return memberTasks[i].UpdatedAt.After(memberTasks[j].UpdatedAt)
		})
		recent := make([]TaskSummary, 0, 5)
		for _, t := range memberTasks {
			if len(recent) == 5 {
				break
			}
			recent = append(recent, TaskSummary{
				ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority, UpdatedAt: t.UpdatedAt,
			})
		}
		report.Members = append(report.Members, MemberPerformance{
			MemberStats: memberStats(&user, memberTasks),
			Role:        roleLabel(roles[id]),
			RecentTasks: recent,
		})
	}

	sort.Slice(report.Members, func(i, j int) bool {
		if report.Members[i].Name != report.Members[j].Name {
			return report.Members[i].Name < report.Members[j].Name
		}
		return report.Members[i].UserID < report.Members[j].UserID
	})
	return report, nil
}

// TaskAnalytics aggregates over the caller's visibility scope. The same math
// runs for both roles, only the scope differs.
func (s *AnalyticsService) TaskAnalytics(user *model.User) (_ *TaskAnalyticsReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task analytics panic: user=%d: %v", user.ID, r)
			metrics.AnalyticsFailures.Inc()
			err = fmt.Errorf("50002:analytics computation failed")
		}
	}()

	var tasks []model.Task
	visibleTasks(s.db, user).Find(&tasks)

	taskIDs := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	assigned := make(map[uint]map[uint]bool)
	if len(taskIDs) > 0 {
		var rows []model.TaskAssignment
		s.db.Where("task_id IN ? AND is_active = ?", taskIDs, true).Find(&rows)
		for _, a := range rows {
			if assigned[a.UserID] == nil {
				assigned[a.UserID] = make(map[uint]bool)
			}
			assigned[a.UserID][a.TaskID] = true
		}
	}

	memberSet := make(map[uint]struct{})
	for _, t := range tasks {
		if t.AssigneeID != nil {
			memberSet[*t.AssigneeID] = struct{}{}
		}
	}
	for uid := range assigned {
		memberSet[uid] = struct{}{}
	}
	memberIDs := make([]uint, 0, len(memberSet))
	for id := range memberSet {
		memberIDs = append(memberIDs, id)
	}

	team, skipped := s.teamPerformance(tasks, assigned, memberIDs)

	recent := []ActivityItem{}
	if len(taskIDs) > 0 {
		var activities []model.TaskActivity
		s.db.Preload("Task").Preload("User").
			Where("task_id IN ?", taskIDs).
			Order("created_at desc").Limit(10).Find(&activities)
		recent = activityItems(activities)
	}

	now := time.Now()
	counts := statusCounts(tasks)
	avgDays, avgMinutes := avgCompletionDuration(tasks)

	return &TaskAnalyticsReport{
		TotalTasks:             counts.Total,
		CompletedTasks:         counts.Done,
		InProgressTasks:        counts.InProgress,
		ReviewTasks:            counts.Review,
		TodoTasks:              counts.Todo,
		OverdueTasks:           overdueCount(tasks, now),
		CompletionRate:         completionRate(counts.Done, counts.Total),
		TasksByAssignee:        team,
		Skipped:                skipped,
		TasksByPriority:        priorityCounts(tasks),
		RecentActivities:       recent,
		AvgTaskDuration:        avgDays,
		AvgTaskDurationMinutes: avgMinutes,
	}, nil
}

// TaskStats is the status breakdown for one project, inactive or not.
func (s *AnalyticsService) TaskStats(projectID uint) StatusCounts {
	var tasks []model.Task
	s.db.Where("project_id = ?", projectID).Find(&tasks)
	return statusCounts(tasks)
}

// ProgressPercentage is completed/total*100 rounded to one decimal, 0 for
// empty projects.
func ProgressPercentage(c StatusCounts) float64 {
	if c.Total == 0 {
		return 0
	}
	return round1(float64(c.Done) / float64(c.Total) * 100)
}

// activeAssignmentSets maps userID -> set of taskIDs held through an active
// assignment, scoped to one project.
func (s *AnalyticsService) activeAssignmentSets(projectID uint) map[uint]map[uint]bool {
	var rows []model.TaskAssignment
	s.db.Where("is_active = ? AND task_id IN (SELECT id FROM tasks WHERE project_id = ?)", true, projectID).
		Find(&rows)
	out := make(map[uint]map[uint]bool)
	for _, a := range rows {
		if out[a.UserID] == nil {
			out[a.UserID] = make(map[uint]bool)
		}
		out[a.UserID][a.TaskID] = true
	}
	return out
}

func (s *AnalyticsService) teamPerformance(tasks []model.Task, assigned map[uint]map[uint]bool, memberIDs []uint) ([]MemberStats, []SkippedMember) {
	team := []MemberStats{}
	skipped := []SkippedMember{}
	for _, id := range memberIDs {
		var user model.User
		if e := s.db.First(&user, id).Error; e != nil {
			skipped = append(skipped, SkippedMember{UserID: id, Reason: "user not found"})
			continue
		}
		team = append(team, memberStats(&user, tasksForUser(tasks, assigned, id)))
	}
	sort.Slice(team, func(i, j int) bool {
		if team[i].Name != team[j].Name {
			return team[i].Name < team[j].Name
		}
		return team[i].UserID < team[j].UserID
	})
	return team, skipped
}

// tasksForUser is the deduplicated union of direct assignment and active
// TaskAssignment membership within the given collection.
func tasksForUser(tasks []model.Task, assigned map[uint]map[uint]bool, userID uint) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		direct := t.AssigneeID != nil && *t.AssigneeID == userID
		if direct || assigned[userID][t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func memberStats(user *model.User, tasks []model.Task) MemberStats {
	c := statusCounts(tasks)
	return MemberStats{
		UserID:          user.ID,
		Name:            user.FullName(),
		Email:           user.Email,
		TotalAssigned:   c.Total,
		CompletedTasks:  c.Done,
		InProgressTasks: c.InProgress,
		ReviewTasks:     c.Review,
		TodoTasks:       c.Todo,
	}
}

func statusCounts(tasks []model.Task) StatusCounts {
	c := StatusCounts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			c.Todo++
		case model.StatusInProgress:
			c.InProgress++
		case model.StatusReview:
			c.Review++
		case model.StatusDone:
			c.Done++
		}
	}
	return c
}

func priorityCounts(tasks []model.Task) []PriorityCount {
	byPriority := make(map[string]int)
	for _, t := range tasks {
		byPriority[t.Priority]++
	}
	out := make([]PriorityCount, 0, 4)
	for _, p := range []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical} {
		out = append(out, PriorityCount{Priority: p, Count: byPriority[p]})
	}
	return out
}

func completionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(done) / float64(total) * 100)
}

func overdueCount(tasks []model.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if t.IsOverdue(now) {
			n++
		}
	}
	return n
}

// avgCompletionDuration averages updated_at-created_at over done tasks, a
// proxy for cycle time rather than tracked work time. Returns days and
// minutes, one decimal each.
func avgCompletionDuration(tasks []model.Task) (days, minutes float64) {
	var total float64
	n := 0
	for _, t := range tasks {
		if t.Status != model.StatusDone {
			continue
		}
		total += t.UpdatedAt.Sub(t.CreatedAt).Seconds()
		n++
	}
	if n == 0 {
		return 0, 0
	}
	avg := total / float64(n)
	return round1(avg / 86400), round1(avg / 60)
}

func recentCompleted(tasks []model.Task, limit int) []CompletedTask {
	done := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			done = append(done, t)
		}
	}
	sort.Slice(done, func(i, j int) bool { return done[i].UpdatedAt.After(done[j].UpdatedAt) })
	out := make([]CompletedTask, 0, limit)
	for _, t := range done {
		if len(out) == limit {
			break
		}
		completedBy := "Unknown"
		if t.Assignee != nil {
			completedBy = t.Assignee.FullName()
		}
		out = append(out, CompletedTask{
			Title:       t.Title,
			CompletedAt: t.UpdatedAt,
			CompletedBy: completedBy,
			Priority:    t.Priority,
		})
	}
	return out
}

func activityItems(activities []model.TaskActivity) []ActivityItem {
	out := make([]ActivityItem, 0, len(activities))
	for _, a := range activities {
		item := ActivityItem{
			ID:           a.ID,
			TaskID:       a.TaskID,
			ActivityType: a.ActivityType,
			Description:  a.Description,
			CreatedAt:    a.CreatedAt,
		}
		if a.Task != nil {
			item.TaskTitle = a.Task.Title
		}
		if a.User != nil {
			item.UserName = a.User.FullName()
		}
		out = append(out, item)
	}
	return out
}

func roleLabel(role string) string {
	if role == model.RoleScrumMaster {
		return "Scrum Master"
	}
	return "Employee"
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
