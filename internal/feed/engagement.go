package feed

import (
	"sort"

	"brewlog/internal/models"
)

// CountTopLevel counts comments on postID that are not replies. The feed
// uses this count.
func CountTopLevel(comments []models.Comment, postID uint) int {
	n := 0
	for i := range comments {
		if comments[i].PostID == postID && comments[i].IsTopLevel() {
			n++
		}
	}
	return n
}

// CountAll counts every comment on postID, replies included. The single
// post view uses this count.
func CountAll(comments []models.Comment, postID uint) int {
	n := 0
	for i := range comments {
		if comments[i].PostID == postID {
			n++
		}
	}
	return n
}

// AttachEngagement merges like counts, the viewer's like flag and a preview
// of the newest top-level comments into each post. Replies in comments are
// ignored. viewerID 0 never has a like.
func AttachEngagement(viewerID uint, posts []models.Post, likes []models.Like, comments []models.Comment) []models.FeedPost {
	likeCount := make(map[uint]int, len(posts))
	liked := make(map[uint]bool)
	for _, l := range likes {
		likeCount[l.PostID]++
		if viewerID != 0 && l.UserID == viewerID {
			liked[l.PostID] = true
		}
	}

	topLevel := make(map[uint][]models.Comment, len(posts))
	for _, c := range comments {
		if c.IsTopLevel() {
			topLevel[c.PostID] = append(topLevel[c.PostID], c)
		}
	}

	out := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		thread := topLevel[p.ID]
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].CreatedAt.After(thread[j].CreatedAt)
		})

		preview := make([]models.CommentPreview, 0, PreviewSize)
		for i := 0; i < len(thread) && i < PreviewSize; i++ {
			preview = append(preview, models.CommentPreview{
				ID:        thread[i].ID,
				Content:   thread[i].Content,
				User:      thread[i].User.Summary(),
				CreatedAt: thread[i].CreatedAt,
			})
		}

		out = append(out, models.FeedPost{
			Post:            p,
			LikeCount:       likeCount[p.ID],
			UserHasLiked:    liked[p.ID],
			CommentCount:    CountTopLevel(comments, p.ID),
			CommentsPreview: preview,
		})
	}
	return out
}
