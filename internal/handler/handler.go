package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
	"github.com/threadview-dev/threadview/internal/projection"
	"github.com/threadview-dev/threadview/internal/service"
	"github.com/threadview-dev/threadview/internal/store"
)

// Handler exposes the discussion core over HTTP. Each open thread gets
// one view session holding its tree store, preferences and the services
// bound to them; the session is the "single active thread view" that
// exclusively owns the store.
type Handler struct {
	p        *persistence.Persistence
	view     service.ViewService
	saved    service.SavedService
	report   service.ReportService
	notifier notify.Notifier
	renderer *projection.Renderer
	maxLen   int

	mu       sync.Mutex
	sessions map[domain.ThreadId]*session
}

type session struct {
	store  *store.TreeStore
	prefs  *projection.ClientPrefs
	vote   service.VoteService
	reply  service.ReplyService
	thread service.ThreadService
}

func New(p *persistence.Persistence, marks service.ViewMarks, notifier notify.Notifier, maxPostLen int) *Handler {
	return &Handler{
		p:        p,
		view:     service.NewView(p.Threads, marks),
		saved:    service.NewSaved(p.Saved, notifier),
		report:   service.NewReport(p.Reports, notifier),
		notifier: notifier,
		renderer: projection.NewRenderer(),
		maxLen:   maxPostLen,
		sessions: make(map[domain.ThreadId]*session),
	}
}

// session returns the view session for a thread, creating it on first
// access.
func (h *Handler) session(threadId domain.ThreadId) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[threadId]
	if !ok {
		st := store.New(h.p)
		prefs := projection.NewClientPrefs()
		sess = &session{
			store:  st,
			prefs:  prefs,
			vote:   service.NewVote(st, h.p.Votes, h.notifier),
			reply:  service.NewReply(st, h.p.Posts, prefs, h.notifier, nil, h.maxLen),
			thread: service.NewThreadService(st, h.p.Threads, h.p.Posts, h.notifier),
		}
		h.sessions[threadId] = sess
	}
	return sess
}

// ensureLoaded loads the session's store on first use. A returned
// LoadError is the partial-degrade warning and leaves the session
// usable; NotFound is terminal and tears the session down.
func (h *Handler) ensureLoaded(ctx context.Context, sess *session, threadId domain.ThreadId) error {
	if _, ok := sess.store.Thread(); ok {
		return nil
	}
	err := sess.store.Load(ctx, threadId)
	if errors.Is(err, internal_errors.NotFound) || errPart(err) == internal_errors.PartThread {
		h.dropSession(threadId)
	}
	return err
}

func (h *Handler) dropSession(threadId domain.ThreadId) {
	h.mu.Lock()
	if sess, ok := h.sessions[threadId]; ok {
		sess.store.Close()
		delete(h.sessions, threadId)
	}
	h.mu.Unlock()
}

func errPart(err error) internal_errors.LoadPart {
	if le, ok := err.(*internal_errors.LoadError); ok {
		return le.Part
	}
	return ""
}

// fatalLoad reports whether a load error leaves the session unusable.
func fatalLoad(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, internal_errors.NotFound) || errPart(err) == internal_errors.PartThread
}

func parseIntParam(value, name string) (int64, error) {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}
	return parsed, nil
}
