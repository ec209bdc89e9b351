// Package api holds the request/response DTOs of the HTTP surface.
package api

import (
	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/projection"
)

type CastVoteRequest struct {
	IsLike *bool `json:"is_like" validate:"required"`
}

type SubmitReplyRequest struct {
	Text     string         `json:"text" validate:"required"`
	ParentId *domain.PostId `json:"parent_id"`
}

type ReportRequest struct {
	Reason  string `json:"reason" validate:"required,max=100"`
	Details string `json:"details" validate:"max=2000"`
}

type UpdateThreadRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Category string `json:"category" validate:"max=50"`
}

type ThreadViewResponse struct {
	View    projection.ThreadView `json:"view"`
	Warning string                `json:"warning,omitempty"` // partial-load degrade message
	Saved   bool                  `json:"saved"`
}

type SubmitReplyResponse struct {
	Post domain.Post `json:"post"`
}
