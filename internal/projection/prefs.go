package projection

import (
	"sync"

	"github.com/threadview-dev/threadview/internal/domain"
)

// Prefs holds the local view preferences: sort mode and the per-post
// collapse map. Reply lists default to collapsed until the user toggles
// them or submits a reply underneath.
type Prefs struct {
	mu       sync.Mutex
	sortMode SortMode
	expanded map[domain.PostId]bool
}

func NewPrefs() *Prefs {
	return &Prefs{
		sortMode: SortOldest,
		expanded: make(map[domain.PostId]bool),
	}
}

func (p *Prefs) SortMode() SortMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortMode
}

func (p *Prefs) SetSortMode(mode SortMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sortMode = mode
}

// Expanded reports whether a post's reply list is open. Absent entries
// are collapsed.
func (p *Prefs) Expanded(postId domain.PostId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded[postId]
}

// Expand force-opens one post's reply list. Called after a reply was
// submitted under it; other posts are untouched.
func (p *Prefs) Expand(postId domain.PostId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expanded[postId] = true
}

func (p *Prefs) Toggle(postId domain.PostId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expanded[postId] = !p.expanded[postId]
}

// ClientPrefs keeps one Prefs per client so one user's sort mode or
// collapse toggles never leak into another user's view. Anonymous
// clients share the zero client id.
type ClientPrefs struct {
	mu      sync.Mutex
	clients map[domain.UserId]*Prefs
}

func NewClientPrefs() *ClientPrefs {
	return &ClientPrefs{clients: make(map[domain.UserId]*Prefs)}
}

// For returns the client's Prefs, creating them on first use.
func (c *ClientPrefs) For(clientId domain.UserId) *Prefs {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefs, ok := c.clients[clientId]
	if !ok {
		prefs = NewPrefs()
		c.clients[clientId] = prefs
	}
	return prefs
}

// Expand force-opens one post's reply list for one client.
func (c *ClientPrefs) Expand(clientId domain.UserId, postId domain.PostId) {
	c.For(clientId).Expand(postId)
}
