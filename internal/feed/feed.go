// Package feed decides which posts a viewer sees and merges engagement into
// them. Everything here works on rows already loaded by the repositories.
package feed

import (
	"sort"
	"strings"

	"brewlog/internal/models"
)

// Mode selects the feed view.
type Mode string

const (
	ModeFriends Mode = "friends"
	ModeExplore Mode = "explore"
)

// PreviewSize is the number of comments embedded in each feed entry.
const PreviewSize = 3

// Options tune the visibility predicate.
type Options struct {
	// PublicStrangersInFriends keeps public posts from non-friends in the
	// friends view, matching the explore predicate.
	PublicStrangersInFriends bool
}

// ParseMode validates a feedType query value. An empty value means friends
// for a signed-in viewer and explore otherwise. Anonymous viewers have no
// friend set, so they always get explore.
func ParseMode(raw string, viewerID uint) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "":
		mode = ModeFriends
	case ModeFriends, ModeExplore:
	default:
		return "", models.NewValidationError("feedType must be 'friends' or 'explore'")
	}
	if viewerID == 0 {
		return ModeExplore, nil
	}
	return mode, nil
}

// Visible reports whether post belongs in viewerID's feed. post.User must
// carry the owner's privacy level.
func Visible(viewerID uint, mode Mode, post *models.Post, friendIDs map[uint]struct{}, opts Options) bool {
	privacy := post.User.PrivacyLevel
	if mode == ModeExplore {
		return privacy == models.PrivacyPublic
	}

	if viewerID != 0 && post.UserID == viewerID {
		return true
	}
	if _, ok := friendIDs[post.UserID]; ok {
		if privacy == models.PrivacyPublic || privacy == models.PrivacyFriendsOnly {
			return true
		}
	}
	return opts.PublicStrangersInFriends && privacy == models.PrivacyPublic
}

// Assemble filters posts down to the ones visible to viewerID and orders
// them newest first. Posts with equal timestamps keep their input order.
func Assemble(viewerID uint, mode Mode, posts []models.Post, friendIDs map[uint]struct{}, opts Options) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if Visible(viewerID, mode, &posts[i], friendIDs, opts) {
			out = append(out, posts[i])
		}
	}
	SortNewestFirst(out)
	return out
}

// VisibleOnProfile reports whether viewerID may see content owned by
// ownerID, for profile pages, single posts and stats.
func VisibleOnProfile(viewerID, ownerID uint, privacy models.PrivacyLevel, friendIDs map[uint]struct{}) bool {
	if viewerID != 0 && viewerID == ownerID {
		return true
	}
	switch privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFriendsOnly:
		_, ok := friendIDs[ownerID]
		return ok
	}
	return false
}

// MatchesSearch reports whether q occurs in the drink or shop name, or
// names one of the post's coffee notes. Matching ignores case.
func MatchesSearch(post *models.Post, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(post.DrinkName), q) ||
		strings.Contains(strings.ToLower(post.ShopName), q) {
		return true
	}
	for _, note := range post.CoffeeNotes {
		if strings.ToLower(note) == q {
			return true
		}
	}
	return false
}

// SortNewestFirst orders posts by creation time, newest first, stably.
func SortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
