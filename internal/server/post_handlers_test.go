package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"brewlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedEntry struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	DrinkName    string `json:"drink_name"`
	LikeCount    int    `json:"like_count"`
	UserHasLiked bool   `json:"user_has_liked"`
	CommentCount int    `json:"comment_count"`
}

type feedResponse struct {
	Data  []feedEntry `json:"data"`
	Total int         `json:"total"`
}

func (e *testEnv) createPost(userID uint, drink string) uint {
	e.t.Helper()
	var out struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	status := e.do(http.MethodPost, "/api/posts", userID, fiber.Map{
		"shop_id": "shop-1", "shop_name": "Blue Door", "drink_name": drink, "rating": 4,
	}, &out)
	require.Equal(e.t, http.StatusCreated, status)
	return out.Data.ID
}

func (e *testEnv) feed(userID uint, query string) []string {
	e.t.Helper()
	var out feedResponse
	require.Equal(e.t, http.StatusOK, e.do(http.MethodGet, "/api/posts"+query, userID, nil, &out))
	assert.Equal(e.t, len(out.Data), out.Total)
	drinks := make([]string, 0, len(out.Data))
	for _, p := range out.Data {
		drinks = append(drinks, p.DrinkName)
	}
	return drinks
}

func TestCreatePost_RatingBounds(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")

	tests := []struct {
		rating int
		status int
	}{
		{0, http.StatusBadRequest},
		{6, http.StatusBadRequest},
		{1, http.StatusCreated},
		{5, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rating %d", tt.rating), func(t *testing.T) {
			var body errorBody
			status := e.do(http.MethodPost, "/api/posts", 1, fiber.Map{"drink_name": "Flat White", "rating": tt.rating}, &body)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, models.CodeValidation, body.Code)
				assert.NotEmpty(t, body.Error)
			}
		})
	}

	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/posts", 1, fiber.Map{"rating": 3}, nil), "drink name is required")
	assert.Equal(t, http.StatusBadRequest,
		e.do(http.MethodPost, "/api/posts", 1, fiber.Map{"drink_name": "x", "rating": 3, "shop_tags": []string{"karaoke"}}, nil))
	assert.Equal(t, http.StatusUnauthorized,
		e.do(http.MethodPost, "/api/posts", 0, fiber.Map{"drink_name": "x", "rating": 3}, nil))
}

func TestPostOwnership(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	e.createProfile(2, "bob", "public")
	id := e.createPost(1, "Latte")
	path := fmt.Sprintf("/api/posts/%d", id)
	edit := fiber.Map{"drink_name": "Oat Latte", "rating": 5}

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path, 2, edit, nil))
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, path, 2, nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/posts/9999", 1, edit, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/posts/abc", 1, nil, nil))

	var got struct {
		Data feedEntry `json:"data"`
	}
	assert.Equal(t, http.StatusOK, e.do(http.MethodPut, path, 1, edit, &got))
	assert.Equal(t, "Oat Latte", got.Data.DrinkName)

	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, path, 1, nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, 0, nil, nil))
}

func TestLikeEndpoints(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	e.createProfile(2, "bob", "public")
	id := e.createPost(1, "Latte")
	likePath := fmt.Sprintf("/api/posts/%d/like", id)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.do(http.MethodPost, likePath, 2, nil, nil)
		}()
	}
	wg.Wait()

	var res struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, likePath, 2, nil, &res))
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, likePath, 2, nil, &res))
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikeCount)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, likePath, 2, nil, &res), "unlike is harmless when nothing is liked")

	var count struct {
		Count int64 `json:"count"`
	}
	e.do(http.MethodGet, "/api/notifications/unread-count", 1, nil, &count)
	assert.Equal(t, int64(1), count.Count, "one like, one notification")
}

func TestListPosts_QueryValidation(t *testing.T) {
	e := newTestEnv(t, nil)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/posts?feedType=hot", 0, nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/posts?offset=-1", 0, nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/posts?limit=ten", 0, nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/posts?userId=0", 0, nil, nil))

	var out feedResponse
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/posts", 0, nil, &out))
	assert.NotNil(t, out.Data)
	assert.Zero(t, out.Total)
}

func TestPostDetailCountsReplies(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	e.createProfile(2, "bob", "public")
	id := e.createPost(1, "Latte")

	var top struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/comments", 2, fiber.Map{"post_id": id, "content": "nice"}, &top))
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/comments", 1, fiber.Map{
		"post_id": id, "content": "thanks", "parent_id": top.Data.ID,
	}, nil))

	var feed feedResponse
	e.do(http.MethodGet, "/api/posts?feedType=explore", 2, nil, &feed)
	require.Len(t, feed.Data, 1)
	assert.Equal(t, 1, feed.Data[0].CommentCount)

	var detail struct {
		Data feedEntry `json:"data"`
	}
	e.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", id), 2, nil, &detail)
	assert.Equal(t, 2, detail.Data.CommentCount)
}

func TestSearchPosts(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createProfile(1, "alice", "public")
	e.createPost(1, "Honey Cortado")
	e.createPost(1, "Drip")

	assert.Equal(t, []string{"Honey Cortado"}, e.feed(0, "?search="+strings.ToUpper("cortado")))
	assert.Empty(t, e.feed(0, "?search=matcha"))
}
