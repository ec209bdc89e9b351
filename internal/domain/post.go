package domain

import "time"

type Post struct {
	Id        PostId    `json:"id"`
	ThreadId  ThreadId  `json:"thread_id"`
	Author    UserId    `json:"author_id"`
	Content   PostText  `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ParentId  *PostId   `json:"parent_id"` // nil => top-level
	Deleted   bool      `json:"deleted"`
}

// IsReply reports whether the post sits one level below a top-level post.
func (p *Post) IsReply() bool {
	return p.ParentId != nil
}

// Depth is 1 for a top-level post and 2 for a reply.
func (p *Post) Depth() int {
	if p.IsReply() {
		return 2
	}
	return 1
}

// MaxReplyDepth caps the tree at a top-level post plus one reply level.
// A reply to a reply is re-parented or rejected before any store mutation.
const MaxReplyDepth = 2
