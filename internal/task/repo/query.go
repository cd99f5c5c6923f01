package repo

import (
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
)

// Predicate is a single (column, operator, value) condition on the tasks table.
type Predicate struct {
	Column string
	Op     string
	Value  any
}

// filterable is the set of columns a predicate may reference. Column names
// are interpolated into SQL, so nothing outside this set is ever accepted.
var filterable = map[string]bool{
	"status":      true,
	"priority":    true,
	"assignee_id": true,
}

var operators = map[string]bool{
	"=": true,
}

// Predicates turns a filter into predicates, one per non-nil field, in a
// stable column order.
func Predicates(f entity.Filter) []Predicate {
	var preds []Predicate
	if f.Status != nil {
		preds = append(preds, Predicate{Column: "status", Op: "=", Value: *f.Status})
	}
	if f.Priority != nil {
		preds = append(preds, Predicate{Column: "priority", Op: "=", Value: *f.Priority})
	}
	if f.AssigneeID != nil {
		preds = append(preds, Predicate{Column: "assignee_id", Op: "=", Value: *f.AssigneeID})
	}
	return preds
}

// listQuery is a row query and a count query sharing one WHERE clause.
type listQuery struct {
	Select     string
	SelectArgs []any
	Count      string
	CountArgs  []any
}

// buildListQuery renders both statements from the same predicate list, so the
// count always describes the population the page was cut from. Limit and
// offset only apply to the row query. Statements use '?' bindvars.
func buildListQuery(preds []Predicate, page entity.Page) (listQuery, error) {
	where, args, err := whereClause(preds)
	if err != nil {
		return listQuery{}, err
	}

	selectArgs := make([]any, 0, len(args)+2)
	selectArgs = append(selectArgs, args...)
	selectArgs = append(selectArgs, page.Limit, page.Offset)

	return listQuery{
		Select:     `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		SelectArgs: selectArgs,
		Count:      `SELECT COUNT(*) FROM tasks` + where,
		CountArgs:  args,
	}, nil
}

func whereClause(preds []Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}
	conditions := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		if !filterable[p.Column] {
			return "", nil, fmt.Errorf("column %q is not filterable", p.Column)
		}
		if !operators[p.Op] {
			return "", nil, fmt.Errorf("operator %q is not supported", p.Op)
		}
		conditions = append(conditions, p.Column+" "+p.Op+" ?")
		args = append(args, p.Value)
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
