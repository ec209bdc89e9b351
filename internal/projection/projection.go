// Package projection derives what gets rendered from store state plus
// local view preferences. Everything here is a pure function of its
// inputs; no mutation logic lives in this package.
package projection

import (
	"sort"

	"github.com/threadview-dev/threadview/internal/domain"
)

type SortMode string

const (
	SortOldest    SortMode = "oldest"
	SortNewest    SortMode = "newest"
	SortMostLiked SortMode = "mostLiked"
)

// Counts is a post's like/dislike tally.
type Counts struct {
	Likes    int
	Dislikes int
}

// CountVotes tallies the current vote collection. Counts are always
// recomputed from the collection, never cached, so they cannot drift
// from it.
func CountVotes(votes []domain.Vote) map[domain.PostId]Counts {
	out := make(map[domain.PostId]Counts)
	for _, v := range votes {
		c := out[v.PostId]
		if v.IsLike {
			c.Likes++
		} else {
			c.Dislikes++
		}
		out[v.PostId] = c
	}
	return out
}

// SortPosts orders a copy of posts by the given mode. The sort is stable:
// posts with equal keys keep their relative order across refreshes.
func SortPosts(posts []domain.Post, mode SortMode, counts map[domain.PostId]Counts) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	switch mode {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].CreatedAt.Before(out[i].CreatedAt)
		})
	case SortMostLiked:
		sort.SliceStable(out, func(i, j int) bool {
			return counts[out[i].Id].Likes > counts[out[j].Id].Likes
		})
	default: // oldest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}
