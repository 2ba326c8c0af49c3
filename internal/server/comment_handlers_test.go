package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_ContentBounds(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	id := e.createPost(1, "Latte")

	tests := []struct {
		name    string
		content string
		status  int
	}{
		{"empty", "", http.StatusBadRequest},
		{"1001 chars", strings.Repeat("x", 1001), http.StatusBadRequest},
		{"1 char", "x", http.StatusCreated},
		{"1000 chars", strings.Repeat("x", 1000), http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := e.do(http.MethodPost, "/api/comments", 1, fiber.Map{"post_id": id, "content": tt.content}, nil)
			assert.Equal(t, tt.status, status)
		})
	}

	assert.Equal(t, http.StatusNotFound,
		e.do(http.MethodPost, "/api/comments", 1, fiber.Map{"post_id": 999, "content": "hi"}, nil))
	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/comments", 1, fiber.Map{"content": "hi"}, nil))
}

func TestCommentThreadAndOwnership(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	e.createProfile(2, "bob", "public")
	postID := e.createPost(1, "Latte")

	var top struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated,
		e.do(http.MethodPost, "/api/comments", 2, fiber.Map{"post_id": postID, "content": "first"}, &top))
	var reply struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/comments", 1, fiber.Map{
		"post_id": postID, "content": "reply", "parent_id": top.Data.ID,
	}, &reply))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/comments", 2, fiber.Map{
		"post_id": postID, "content": "nested", "parent_id": reply.Data.ID,
	}, nil))

	var list struct {
		Data []struct {
			Content string `json:"content"`
			Replies []struct {
				Content string `json:"content"`
			} `json:"replies"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", postID), 0, nil, &list))
	require.Len(t, list.Data, 1)
	require.Len(t, list.Data[0].Replies, 1)
	assert.Equal(t, "reply", list.Data[0].Replies[0].Content)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/comments", 0, nil, nil))

	var notOwner, missing errorBody
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/comments", 1,
		fiber.Map{"comment_id": top.Data.ID, "content": "hijack"}, &notOwner))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/comments", 1,
		fiber.Map{"comment_id": 9999, "content": "hijack"}, &missing))
	assert.Equal(t, missing.Error, notOwner.Error)
	assert.Equal(t, "Comment not found or unauthorized", notOwner.Error)

	deletePath := fmt.Sprintf("/api/comments?comment_id=%d", top.Data.ID)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, deletePath, 1, nil, nil))
	assert.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/comments", 2,
		fiber.Map{"comment_id": top.Data.ID, "content": "edited"}, nil))
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, deletePath, 2, nil, nil))

	e.do(http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", postID), 0, nil, &list)
	assert.Empty(t, list.Data)
}
