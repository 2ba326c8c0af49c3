package client

import (
	"context"

	"brewlog/pkg/optimistic"
)

type mutationKey struct{}

func withMutationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, mutationKey{}, id)
}

func mutationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(mutationKey{}).(string)
	return id, ok && id != ""
}

// LikeToggle flips the like on postID optimistically. The tracker shows the
// flipped state right away; the server's answer confirms it, and a failure
// rolls it back and is returned. A toggle while another is still in flight
// fails with optimistic.ErrInFlight and sends nothing.
func (c *Client) LikeToggle(ctx context.Context, postID uint, tr *optimistic.Tracker[LikeState]) (LikeState, error) {
	id, err := tr.Begin(func(s LikeState) LikeState {
		if s.Liked {
			return LikeState{Liked: false, LikeCount: max(s.LikeCount-1, 0)}
		}
		return LikeState{Liked: true, LikeCount: s.LikeCount + 1}
	})
	if err != nil {
		return tr.Value(), err
	}

	ctx = withMutationID(ctx, id)
	var res LikeState
	if tr.Value().Liked {
		res, err = c.LikePost(ctx, postID)
	} else {
		res, err = c.UnlikePost(ctx, postID)
	}
	if err != nil {
		_ = tr.Rollback()
		return tr.Value(), err
	}

	_ = tr.ConfirmWith(res)
	return res, nil
}
