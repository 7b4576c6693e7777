package core

import "fmt"

// UserRole is the access level of a user
type UserRole string

const (
	// UserRoleAdmin has full control over the workspace
	UserRoleAdmin UserRole = "admin"
	// UserRoleManager manages projects and their members
	UserRoleManager UserRole = "manager"
	// UserRoleMember works on assigned tasks
	UserRoleMember UserRole = "member"
)

// String returns the string representation
func (r UserRole) String() string {
	return string(r)
}

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleMember:
		return true
	default:
		return false
	}
}

// AllUserRoles returns every role in declaration order
func AllUserRoles() []UserRole {
	return []UserRole{UserRoleAdmin, UserRoleManager, UserRoleMember}
}

// ParseUserRole converts s to a UserRole
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role: %q", s)
	}
	return r, nil
}

// TaskStatus is the workflow position of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusArchived   TaskStatus = "archived"
)

// String returns the string representation
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted, TaskStatusArchived:
		return true
	default:
		return false
	}
}

// AllTaskStatuses returns every task status in declaration order
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted, TaskStatusArchived}
}

// ParseTaskStatus converts s to a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %q", s)
	}
	return status, nil
}

// TaskPriority ranks tasks by urgency
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// String returns the string representation
func (p TaskPriority) String() string {
	return string(p)
}

// IsValid checks if the priority is valid
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// AllTaskPriorities returns every priority from lowest to highest
func AllTaskPriorities() []TaskPriority {
	return []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}
}

// ParseTaskPriority converts s to a TaskPriority
func ParseTaskPriority(s string) (TaskPriority, error) {
	p := TaskPriority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid task priority: %q", s)
	}
	return p, nil
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// String returns the string representation
func (s ProjectStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

// AllProjectStatuses returns every project status in declaration order
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusArchived}
}

// ParseProjectStatus converts s to a ProjectStatus
func ParseProjectStatus(s string) (ProjectStatus, error) {
	status := ProjectStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid project status: %q", s)
	}
	return status, nil
}
