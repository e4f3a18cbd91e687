package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/internal/model"
)

func TestCreateProjectAddsCreatorAsMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)

	project, err := svc.Create("alpha", "first project", sm.ID, []uint{alice.ID, sm.ID})
	require.NoError(t, err)

	members, err := svc.Members(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	roles := make(map[uint]string)
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	require.Equal(t, model.RoleScrumMaster, roles[sm.ID])
	require.Equal(t, model.RoleEmployee, roles[alice.ID])
}

func TestCreateProjectRollsBackOnMemberInsertFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)

	// The duplicate member id violates uk_project_user; nothing may survive.
	_, err := svc.Create("alpha", "", sm.ID, []uint{alice.ID, alice.ID})
	require.Error(t, err)

	var projects, members int64
	db.Model(&model.Project{}).Count(&projects)
	db.Model(&model.ProjectMember{}).Count(&members)
	require.Equal(t, int64(0), projects)
	require.Equal(t, int64(0), members)
}

func TestGetVisibleScopedForEmployee(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	member := createUser(t, db, "member@example.com", model.RoleEmployee)
	assignee := createUser(t, db, "assignee@example.com", model.RoleEmployee)
	outsider := createUser(t, db, "outsider@example.com", model.RoleEmployee)

	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, member.ID, model.RoleEmployee)
	createTask(t, db, project.ID, sm.ID, model.StatusTodo, &assignee.ID)

	for _, u := range []*model.User{sm, member, assignee} {
		got, err := svc.GetVisible(project.ID, u)
		require.NoError(t, err, "user=%s", u.Email)
		require.Equal(t, project.ID, got.ID)
	}

	_, err := svc.GetVisible(project.ID, outsider)
	require.Error(t, err)
	require.Contains(t, err.Error(), "40402")
}

func TestEmployeeProjectListScopedByMembershipOrAssignment(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)

	memberOf := createProject(t, db, "member-of", sm.ID)
	addMember(t, db, memberOf.ID, alice.ID, model.RoleEmployee)

	assignedIn := createProject(t, db, "assigned-in", sm.ID)
	createTask(t, db, assignedIn.ID, sm.ID, model.StatusTodo, &alice.ID)

	createProject(t, db, "unrelated", sm.ID)

	projects, err := svc.List(alice)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	all, err := svc.List(sm)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDeactivateHidesProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	project := createProject(t, db, "alpha", sm.ID)

	require.NoError(t, svc.Deactivate(project.ID))

	_, err := svc.GetByID(project.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "40402")

	projects, err := svc.List(sm)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestAddMemberReactivatesInactiveRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, alice.ID, model.RoleEmployee)

	require.NoError(t, svc.RemoveMember(project.ID, alice.ID))

	member, err := svc.AddMember(project.ID, alice.ID, model.RoleEmployee)
	require.NoError(t, err)
	require.True(t, member.IsActive)

	// Exactly one row per (project, user) pair ever exists.
	var count int64
	db.Model(&model.ProjectMember{}).Where("project_id = ? AND user_id = ?", project.ID, alice.ID).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestAddMemberTwiceFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, alice.ID, model.RoleEmployee)

	_, err := svc.AddMember(project.ID, alice.ID, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40005")
}

func TestRemoveNonMemberFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)

	err := svc.RemoveMember(project.ID, alice.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "40401")
}

func TestCanAccessRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewMembershipResolver(db))

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	member := createUser(t, db, "member@example.com", model.RoleEmployee)
	assignee := createUser(t, db, "assignee@example.com", model.RoleEmployee)
	outsider := createUser(t, db, "outsider@example.com", model.RoleEmployee)

	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, member.ID, model.RoleEmployee)
	createTask(t, db, project.ID, sm.ID, model.StatusTodo, &assignee.ID)

	require.True(t, svc.CanAccess(project.ID, sm))
	require.True(t, svc.CanAccess(project.ID, member))
	require.True(t, svc.CanAccess(project.ID, assignee))
	require.False(t, svc.CanAccess(project.ID, outsider))
}

func TestMessagesRequireAccess(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewMembershipResolver(db))
	svc := NewMessageService(db, projects)

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	outsider := createUser(t, db, "outsider@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)

	_, err := svc.Post(project.ID, outsider, "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40302")

	posted, err := svc.Post(project.ID, sm, "hello team")
	require.NoError(t, err)
	require.Equal(t, sm.ID, posted.AuthorID)

	messages, err := svc.List(project.ID, sm)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "hello team", messages[0].Content)
}
