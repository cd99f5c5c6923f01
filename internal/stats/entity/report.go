package entity

// Report is the aggregate task statistics. It is derived on every request
// and never stored.
type Report struct {
	TotalTasks      int64            `json:"total_tasks"`
	TasksByStatus   map[string]int64 `json:"tasks_by_status"`
	TasksByPriority map[string]int64 `json:"tasks_by_priority"`
	CompletionRate  int              `json:"completion_rate"`
	OverdueTasks    int64            `json:"overdue_tasks"`
	TasksByAssignee []AssigneeCount  `json:"tasks_by_assignee"`
}

// AssigneeCount is the number of tasks assigned to one user (possibly zero).
type AssigneeCount struct {
	UserID    int64  `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	TaskCount int64  `db:"task_count" json:"task_count"`
}

// GroupCount is one row of a GROUP BY count query.
type GroupCount struct {
	Key   string `db:"group_key"`
	Count int64  `db:"group_count"`
}
