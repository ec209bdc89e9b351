package domain

// Vote holds one user's like/dislike on one post. At most one row may
// exist per (post, user) pair; resubmitting the same polarity withdraws
// the vote, the opposite polarity flips it.
type Vote struct {
	Id     VoteId `json:"id"`
	PostId PostId `json:"post_id"`
	UserId UserId `json:"user_id"`
	IsLike bool   `json:"is_like"`
}

// SavedThread is an existence-only marker: presence means the user
// bookmarked the thread.
type SavedThread struct {
	Id       int64    `json:"id"`
	UserId   UserId   `json:"user_id"`
	ThreadId ThreadId `json:"thread_id"`
}

type Report struct {
	Id         int64  `json:"id"`
	PostId     PostId `json:"post_id"`
	ReporterId UserId `json:"reporter_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}

type Profile struct {
	Id          UserId      `json:"id"`
	DisplayName DisplayName `json:"display_name"`
}
