package domain

import "time"

type Thread struct {
	Id        ThreadId    `json:"id"`
	Title     ThreadTitle `json:"title"`
	Author    UserId      `json:"author_id"`
	Category  Category    `json:"category"`
	CreatedAt time.Time   `json:"created_at"`
	Views     int64       `json:"views"`   // monotonically non-decreasing, best-effort counter
	Deleted   bool        `json:"deleted"` // terminal: no mutation is valid after deletion
}
