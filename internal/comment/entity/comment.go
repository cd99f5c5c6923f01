package entity

import "time"

// Comment is a row in the `comments` table joined with its author's
// username and email.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	TaskID    int64     `db:"task_id" json:"task_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Username  *string   `db:"username" json:"username"`
	Email     *string   `db:"email" json:"email"`
}
