package validation

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskentity "github.com/ovaphlow/pitchfork/service-task-go/internal/task/entity"
)

func body(t *testing.T, s string) Body {
	t.Helper()
	b, err := DecodeBody(strings.NewReader(s))
	require.NoError(t, err)
	return b
}

func fields(errs Errors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestDecodeBody(t *testing.T) {
	b, err := DecodeBody(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = DecodeBody(strings.NewReader("null"))
	require.NoError(t, err)
	assert.NotNil(t, b)

	_, err = DecodeBody(strings.NewReader("[1,2]"))
	assert.Error(t, err)
}

func TestID(t *testing.T) {
	for _, s := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ID(s)
		assert.False(t, ok, s)
	}
	id, ok := ID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestTaskFilter(t *testing.T) {
	lim := Limits{MaxLimit: 100}

	f, p, errs := TaskFilter(url.Values{"status": {"done"}, "assignee_id": {"3"}, "limit": {"10"}, "offset": {"5"}}, lim)
	require.True(t, errs.Empty())
	assert.Equal(t, "done", *f.Status)
	assert.Nil(t, f.Priority)
	assert.Equal(t, int64(3), *f.AssigneeID)
	assert.Equal(t, 10, *p.Limit)
	assert.Equal(t, 5, *p.Offset)

	_, _, errs = TaskFilter(url.Values{"status": {"open"}, "priority": {"urgent"}, "assignee_id": {"0"}, "limit": {"101"}, "offset": {"-1"}}, lim)
	assert.Equal(t, []string{"status", "priority", "assignee_id", "limit", "offset"}, fields(errs))
}

func TestTaskCreate(t *testing.T) {
	in, errs := TaskCreate(body(t, `{"title":" Ship ","description":"  ","priority":"high","assignee_id":"2","due_date":"2025-04-01","creator_id":5}`))
	require.True(t, errs.Empty(), errs)
	assert.Equal(t, "Ship", in.Title)
	assert.Nil(t, in.Description, "blank description is stored as null")
	assert.Equal(t, "high", in.Priority)
	assert.Equal(t, int64(2), *in.AssigneeID)
	assert.Equal(t, int64(5), in.CreatorID)
	assert.True(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Equal(*in.DueDate))

	in, errs = TaskCreate(body(t, `{"title":"x"}`))
	require.True(t, errs.Empty())
	assert.Empty(t, in.Priority)
	assert.Zero(t, in.CreatorID)

	long := strings.Repeat("a", MaxTitleLen+1)
	_, errs = TaskCreate(body(t, `{"title":"`+long+`","priority":"urgent","assignee_id":-1,"due_date":"tomorrow","description":5}`))
	assert.Equal(t, []string{"title", "description", "priority", "assignee_id", "due_date"}, fields(errs))

	_, errs = TaskCreate(body(t, `{"title":null}`))
	assert.Equal(t, []string{"title"}, fields(errs))
}

func TestTaskPatch(t *testing.T) {
	patch, errs := TaskPatch(body(t, `{"status":"done","assignee_id":null,"due_date":null,"creator_id":9,"unknown":true}`))
	require.True(t, errs.Empty())
	assert.Len(t, patch, 3)
	assert.Equal(t, "done", patch[taskentity.FieldStatus])
	assert.Nil(t, patch[taskentity.FieldAssigneeID].(*int64))
	assert.Nil(t, patch[taskentity.FieldDueDate].(*time.Time))

	patch, errs = TaskPatch(body(t, `{"foo":"bar"}`))
	require.True(t, errs.Empty())
	assert.Empty(t, patch)

	_, errs = TaskPatch(body(t, `{"title":"","status":"archived","priority":1}`))
	assert.Equal(t, []string{"title", "status", "priority"}, fields(errs))
}

func TestAssign(t *testing.T) {
	id, errs := Assign(body(t, `{"assignee_id":7}`))
	require.True(t, errs.Empty())
	assert.Equal(t, int64(7), *id)

	id, errs = Assign(body(t, `{"assignee_id":null}`))
	require.True(t, errs.Empty())
	assert.Nil(t, id)

	_, errs = Assign(body(t, `{}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "assignee_id is required", errs[0].Message)

	_, errs = Assign(body(t, `{"assignee_id":"abc"}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid assignee", errs[0].Message)
}

func TestUserCreate(t *testing.T) {
	in, errs := UserCreate(body(t, `{"username":" alice_1 ","email":"Alice@Example.COM","password":"secret1"}`))
	require.True(t, errs.Empty())
	assert.Equal(t, "alice_1", in.Username)
	assert.Equal(t, "alice@example.com", in.Email)
	assert.Equal(t, "secret1", in.Password)

	tests := []struct {
		name string
		json string
		want []string
	}{
		{name: "all missing", json: `{}`, want: []string{"username", "email", "password"}},
		{name: "short username", json: `{"username":"ab","email":"a@b.co","password":"secret1"}`, want: []string{"username"}},
		{name: "bad username chars", json: `{"username":"al ice","email":"a@b.co","password":"secret1"}`, want: []string{"username"}},
		{name: "bad email", json: `{"username":"alice","email":"not-an-email","password":"secret1"}`, want: []string{"email"}},
		{name: "short password", json: `{"username":"alice","email":"a@b.co","password":"123"}`, want: []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := UserCreate(body(t, tt.json))
			assert.Equal(t, tt.want, fields(errs))
		})
	}
}

func TestCommentCreate(t *testing.T) {
	in, errs := CommentCreate(body(t, `{"user_id":3,"content":"  hello  "}`))
	require.True(t, errs.Empty())
	assert.Equal(t, CommentInput{UserID: 3, Content: "hello"}, in)

	_, errs = CommentCreate(body(t, `{"user_id":"x","content":"   "}`))
	assert.Equal(t, []string{"user_id", "content"}, fields(errs))

	_, errs = CommentCreate(body(t, `{"content":"`+strings.Repeat("b", MaxContentLen+1)+`"}`))
	assert.Equal(t, []string{"user_id", "content"}, fields(errs))
}

func TestParseISO8601(t *testing.T) {
	for _, s := range []string{"2025-04-01T10:00:00Z", "2025-04-01T12:00:00+02:00", "2025-04-01T10:00:00.000Z", "2025-04-01T10:00:00", "2025-04-01T10:00"} {
		got, ok := ParseISO8601(s)
		require.True(t, ok, s)
		assert.True(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC).Equal(got), s)
	}
	_, ok := ParseISO8601("01/04/2025")
	assert.False(t, ok)
}
