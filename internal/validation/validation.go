// Package validation checks request input before it reaches an engine and
// reports every rejected field with a human-readable message.
package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	taskentity "github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
	userentity "github.com/ovaphlow/pitchfork/service-task-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 5000
	MaxContentLen     = 5000
	MinUsernameLen    = 3
	MaxUsernameLen    = 50
	MinPasswordLen    = 6

	usernamePattern = `^[a-zA-Z0-9_-]+$`
)

var (
	statusList   = strings.Join(taskentity.Statuses, ", ")
	priorityList = strings.Join(taskentity.Priorities, ", ")
)

// Body is a decoded JSON object whose values are parsed field by field so
// that absent, null and mistyped values can be told apart.
type Body map[string]json.RawMessage

// MsgInvalidBody is reported when a request body is not a JSON object.
const MsgInvalidBody = "Request body must be a JSON object"

// DecodeBody reads a JSON object. An empty body decodes to an empty Body.
func DecodeBody(r io.Reader) (Body, error) {
	b := Body{}
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		if err == io.EOF {
			return b, nil
		}
		return nil, err
	}
	if b == nil {
		b = Body{}
	}
	return b, nil
}

// Errors collects field failures in the order they were found.
type Errors []utilities.FieldError

func (e *Errors) Add(field, msg string) {
	*e = append(*e, utilities.FieldError{Field: field, Message: msg})
}

func (e Errors) Empty() bool { return len(e) == 0 }

// ID parses a positive integer path parameter.
func ID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Limits bounds the list pagination window.
type Limits struct {
	MaxLimit int
}

// TaskFilter validates the task list query string.
func TaskFilter(q url.Values, lim Limits) (taskentity.Filter, taskentity.PageRequest, Errors) {
	var (
		f    taskentity.Filter
		p    taskentity.PageRequest
		errs Errors
	)
	if v := q.Get("status"); v != "" {
		if taskentity.ValidStatus(v) {
			f.Status = &v
		} else {
			errs.Add("status", "Status must be one of: "+statusList)
		}
	}
	if v := q.Get("priority"); v != "" {
		if taskentity.ValidPriority(v) {
			f.Priority = &v
		} else {
			errs.Add("priority", "Priority must be one of: "+priorityList)
		}
	}
	if v := q.Get("assignee_id"); v != "" {
		if id, ok := ID(v); ok {
			f.AssigneeID = &id
		} else {
			errs.Add("assignee_id", "assignee_id must be a positive integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > lim.MaxLimit {
			errs.Add("limit", fmt.Sprintf("limit must be between 1 and %d", lim.MaxLimit))
		} else {
			p.Limit = &n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs.Add("offset", "offset must be a non-negative integer")
		} else {
			p.Offset = &n
		}
	}
	return f, p, errs
}

// TaskCreate validates a create-task body.
func TaskCreate(b Body) (taskentity.CreateInput, Errors) {
	var (
		in   taskentity.CreateInput
		errs Errors
	)

	title, present, ok := stringField(b, "title")
	title = strings.TrimSpace(title)
	switch {
	case !present || !ok || title == "":
		errs.Add("title", "Title is required")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		errs.Add("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLen))
	default:
		in.Title = title
	}

	if desc, ok := description(b, &errs); ok {
		in.Description = desc
	}

	if v, present, ok := stringField(b, "priority"); present {
		if !ok || !taskentity.ValidPriority(v) {
			errs.Add("priority", "Priority must be one of: "+priorityList)
		} else {
			in.Priority = v
		}
	}

	if id, present, ok := nullableID(b, "assignee_id"); present {
		if !ok {
			errs.Add("assignee_id", "assignee_id must be a positive integer")
		} else {
			in.AssigneeID = id
		}
	}

	if id, present, ok := nullableID(b, "creator_id"); present {
		if !ok || id == nil {
			errs.Add("creator_id", "creator_id must be a positive integer")
		} else {
			in.CreatorID = *id
		}
	}

	if due, ok := dueDate(b, &errs); ok {
		in.DueDate = due
	}
	return in, errs
}

// TaskPatch validates an update-task body. Only updatable fields are read;
// anything else in the body is ignored.
func TaskPatch(b Body) (taskentity.Patch, Errors) {
	var errs Errors
	patch := taskentity.Patch{}

	if v, present, ok := stringField(b, taskentity.FieldTitle); present {
		v = strings.TrimSpace(v)
		switch {
		case !ok || v == "":
			errs.Add("title", "Title cannot be empty")
		case utf8.RuneCountInString(v) > MaxTitleLen:
			errs.Add("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLen))
		default:
			patch[taskentity.FieldTitle] = v
		}
	}
	if desc, ok := description(b, &errs); ok {
		patch[taskentity.FieldDescription] = desc
	}
	if v, present, ok := stringField(b, taskentity.FieldStatus); present {
		if !ok || !taskentity.ValidStatus(v) {
			errs.Add("status", "Status must be one of: "+statusList)
		} else {
			patch[taskentity.FieldStatus] = v
		}
	}
	if v, present, ok := stringField(b, taskentity.FieldPriority); present {
		if !ok || !taskentity.ValidPriority(v) {
			errs.Add("priority", "Priority must be one of: "+priorityList)
		} else {
			patch[taskentity.FieldPriority] = v
		}
	}
	if id, present, ok := nullableID(b, taskentity.FieldAssigneeID); present {
		if !ok {
			errs.Add("assignee_id", "assignee_id must be a positive integer")
		} else {
			patch[taskentity.FieldAssigneeID] = id
		}
	}
	if due, ok := dueDate(b, &errs); ok {
		patch[taskentity.FieldDueDate] = due
	}
	return patch, errs
}

// Assign validates an assignment body: assignee_id must be present and either
// a positive integer or null.
func Assign(b Body) (*int64, Errors) {
	var errs Errors
	id, present, ok := nullableID(b, "assignee_id")
	switch {
	case !present:
		errs.Add("assignee_id", "assignee_id is required")
	case !ok:
		errs.Add("assignee_id", "Invalid assignee")
	}
	return id, errs
}

// UserCreate validates a registration body. The email is normalized.
func UserCreate(b Body) (userentity.CreateInput, Errors) {
	var (
		in   userentity.CreateInput
		errs Errors
	)

	username, _, _ := stringField(b, "username")
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs.Add("username", "Username is required")
	case utf8.RuneCountInString(username) < MinUsernameLen || utf8.RuneCountInString(username) > MaxUsernameLen:
		errs.Add("username", fmt.Sprintf("Username must be between %d and %d characters", MinUsernameLen, MaxUsernameLen))
	case !govalidator.Matches(username, usernamePattern):
		errs.Add("username", "Username can only contain letters, numbers, underscores, and hyphens")
	default:
		in.Username = username
	}

	email, _, _ := stringField(b, "email")
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Add("email", "Email is required")
	case !govalidator.IsEmail(email):
		errs.Add("email", "Invalid email format")
	default:
		in.Email = strings.ToLower(email)
	}

	password, _, _ := stringField(b, "password")
	switch {
	case password == "":
		errs.Add("password", "Password is required")
	case utf8.RuneCountInString(password) < MinPasswordLen:
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters long", MinPasswordLen))
	default:
		in.Password = password
	}
	return in, errs
}

// CommentInput is a validated create-comment body.
type CommentInput struct {
	UserID  int64
	Content string
}

// CommentCreate validates a create-comment body; content is trimmed.
func CommentCreate(b Body) (CommentInput, Errors) {
	var (
		in   CommentInput
		errs Errors
	)
	id, present, ok := nullableID(b, "user_id")
	switch {
	case !present || id == nil && ok:
		errs.Add("user_id", "user_id is required")
	case !ok:
		errs.Add("user_id", "user_id must be a positive integer")
	default:
		in.UserID = *id
	}

	content, _, _ := stringField(b, "content")
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		errs.Add("content", "Content is required")
	case utf8.RuneCountInString(content) > MaxContentLen:
		errs.Add("content", fmt.Sprintf("Content must be at most %d characters", MaxContentLen))
	default:
		in.Content = content
	}
	return in, errs
}

// stringField reads a JSON string. present is false when the key is absent;
// ok is false when the value is not a string (null included).
func stringField(b Body, key string) (val string, present, ok bool) {
	raw, present := b[key]
	if !present {
		return "", false, false
	}
	if err := json.Unmarshal(raw, &val); err != nil || isNull(raw) {
		return "", true, false
	}
	return val, true, true
}

// nullableID reads a positive integer or null. A numeric string such as "5"
// is accepted. On null, id is nil and ok is true.
func nullableID(b Body, key string) (id *int64, present, ok bool) {
	raw, present := b[key]
	if !present {
		return nil, false, false
	}
	if isNull(raw) {
		return nil, true, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, true, false
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || v < 1 {
		return nil, true, false
	}
	return &v, true, true
}

// description reads an optional, nullable description. ok is false when the
// field is absent or invalid; a blank value becomes null.
func description(b Body, errs *Errors) (*string, bool) {
	raw, present := b["description"]
	if !present {
		return nil, false
	}
	if isNull(raw) {
		return nil, true
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		errs.Add("description", "Description must be a string")
		return nil, false
	}
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > MaxDescriptionLen {
		errs.Add("description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLen))
		return nil, false
	}
	if v == "" {
		return nil, true
	}
	return &v, true
}

// dueDate reads an optional, nullable ISO-8601 timestamp.
func dueDate(b Body, errs *Errors) (*time.Time, bool) {
	raw, present := b["due_date"]
	if !present {
		return nil, false
	}
	if isNull(raw) {
		return nil, true
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		errs.Add("due_date", "due_date must be a valid ISO 8601 date")
		return nil, false
	}
	t, ok := ParseISO8601(v)
	if !ok {
		errs.Add("due_date", "due_date must be a valid ISO 8601 date")
		return nil, false
	}
	return &t, true
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO8601 accepts full RFC 3339 timestamps as well as the date-only and
// zone-less forms clients commonly send; zone-less values are taken as UTC.
func ParseISO8601(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
