package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
)

type ReportService interface {
	Submit(ctx context.Context, postId domain.PostId, reporterId domain.UserId, reason, details string) error
}

// Report files at most one report per (post, reporter). Duplicates are
// rejected before any insert is attempted.
type Report struct {
	reports  persistence.Collection[domain.Report, int64]
	notifier notify.Notifier
	validate *validator.Validate
}

type reportInput struct {
	Reason  string `validate:"required,max=100"`
	Details string `validate:"max=2000"`
}

func NewReport(reports persistence.Collection[domain.Report, int64], notifier notify.Notifier) *Report {
	return &Report{
		reports:  reports,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Report) Submit(ctx context.Context, postId domain.PostId, reporterId domain.UserId, reason, details string) error {
	if err := s.validate.Struct(reportInput{Reason: reason, Details: details}); err != nil {
		return &internal_errors.ValidationError{Message: "invalid report"}
	}

	existing, err := s.reports.FetchMany(ctx,
		persistence.Filter{"post_id": postId, "reporter_id": reporterId},
		persistence.Order{},
	)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &internal_errors.ValidationError{Message: "post already reported"}
	}

	_, err = s.reports.Insert(ctx, domain.Report{
		PostId:     postId,
		ReporterId: reporterId,
		Reason:     reason,
		Details:    details,
	})
	if err != nil {
		s.notifier.Error("failed to submit report")
		return &internal_errors.MutationError{Op: "report", Err: err}
	}
	s.notifier.Success("report submitted")
	return nil
}
