package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
	"github.com/threadview-dev/threadview/internal/persistence/memory"
)

func TestReportSubmit(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	notifier := &mockNotifier{}
	svc := NewReport(mem.Reports, notifier)

	require.NoError(t, svc.Submit(ctx, 10, 1, "spam", "links everywhere"))
	recs, err := mem.Reports.FetchMany(ctx, nil, persistence.Order{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "spam", recs[0].Reason)
	assert.NotEmpty(t, notifier.successes)

	// one report per (post, reporter)
	err = svc.Submit(ctx, 10, 1, "spam again", "")
	assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))

	// the same post may be reported by someone else
	require.NoError(t, svc.Submit(ctx, 10, 2, "off topic", ""))
	recs, err = mem.Reports.FetchMany(ctx, nil, persistence.Order{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestReportValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewReport(memory.New().Reports, &mockNotifier{})

	tests := []struct {
		name    string
		reason  string
		details string
	}{
		{"missing reason", "", "some details"},
		{"reason too long", strings.Repeat("x", 101), ""},
		{"details too long", "spam", strings.Repeat("x", 2001)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Submit(ctx, 10, 1, tc.reason, tc.details)
			assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
		})
	}
}
