package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/internal/model"
)

func TestEffectiveMembersIncludeActiveMembers(t *testing.T) {
	db := newTestDB(t)
	resolver := NewMembershipResolver(db)

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	bob := createUser(t, db, "bob@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, sm.ID, model.RoleScrumMaster)
	addMember(t, db, project.ID, alice.ID, model.RoleEmployee)
	addMember(t, db, project.ID, bob.ID, model.RoleEmployee)

	ids := resolver.EffectiveMemberIDs(project.ID)
	require.ElementsMatch(t, []uint{sm.ID, alice.ID, bob.ID}, ids)
	require.Equal(t, 3, resolver.EffectiveMemberCount(project.ID))
}

func TestEffectiveMembersIncludeAssigneesWithoutMembership(t *testing.T) {
	db := newTestDB(t)
	resolver := NewMembershipResolver(db)

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	outsider := createUser(t, db, "outsider@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, sm.ID, model.RoleScrumMaster)
	createTask(t, db, project.ID, sm.ID, model.StatusTodo, &outsider.ID)

	ids := resolver.EffectiveMemberIDs(project.ID)
	require.ElementsMatch(t, []uint{sm.ID, outsider.ID}, ids)
}

func TestRemovedMemberWithActiveAssignmentStaysEffective(t *testing.T) {
	db := newTestDB(t)
	resolver := NewMembershipResolver(db)
	projects := NewProjectService(db, resolver)

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, sm.ID, model.RoleScrumMaster)
	addMember(t, db, project.ID, alice.ID, model.RoleEmployee)
	createTask(t, db, project.ID, sm.ID, model.StatusInProgress, &alice.ID)

	require.NoError(t, projects.RemoveMember(project.ID, alice.ID))

	ids := resolver.EffectiveMemberIDs(project.ID)
	require.Contains(t, ids, alice.ID)
}

func TestInactiveAssignmentDoesNotCountAlone(t *testing.T) {
	db := newTestDB(t)
	resolver := NewMembershipResolver(db)

	sm := createUser(t, db, "sm@example.com", model.RoleScrumMaster)
	ghost := createUser(t, db, "ghost@example.com", model.RoleEmployee)
	project := createProject(t, db, "alpha", sm.ID)
	addMember(t, db, project.ID, sm.ID, model.RoleScrumMaster)

	task := createTask(t, db, project.ID, sm.ID, model.StatusTodo, nil)
	require.NoError(t, db.Create(&model.TaskAssignment{
		TaskID: task.ID, UserID: ghost.ID, IsActive: false,
	}).Error)

	ids := resolver.EffectiveMemberIDs(project.ID)
	require.NotContains(t, ids, ghost.ID)
}
