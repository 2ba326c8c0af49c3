// Package client is a small Go client for the Brewlog HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Feed types accepted by ListFeed.
const (
	FeedFriends = "friends"
	FeedExplore = "explore"
)

// MutationHeader carries the optimistic mutation ID on write requests.
const MutationHeader = "X-Mutation-ID"

// Client talks to one Brewlog API server. It never retries a request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("brewlog: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("brewlog: %d: %s", e.StatusCode, e.Message)
}

// Author is the profile summary attached to posts and friend entries.
type Author struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Post is a feed entry with the caller's view of its engagement.
type Post struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	User          Author    `json:"user"`
	ShopID        string    `json:"shop_id"`
	ShopName      string    `json:"shop_name"`
	DrinkName     string    `json:"drink_name"`
	Rating        int       `json:"rating"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	LocationNotes string    `json:"location_notes,omitempty"`
	ShopTags      []string  `json:"shop_tags"`
	CoffeeNotes   []string  `json:"coffee_notes"`
	LikeCount     int       `json:"like_count"`
	UserHasLiked  bool      `json:"user_has_liked"`
	CommentCount  int       `json:"comment_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPost is the payload for CreatePost.
type NewPost struct {
	ShopID        string   `json:"shop_id,omitempty"`
	ShopName      string   `json:"shop_name,omitempty"`
	DrinkName     string   `json:"drink_name"`
	Rating        int      `json:"rating"`
	PhotoURL      string   `json:"photo_url,omitempty"`
	LocationNotes string   `json:"location_notes,omitempty"`
	ShopTags      []string `json:"shop_tags,omitempty"`
	CoffeeNotes   []string `json:"coffee_notes,omitempty"`
}

// FeedQuery selects a page of posts. Zero fields use server defaults.
type FeedQuery struct {
	FeedType string
	UserID   uint
	Search   string
	Limit    int
	Offset   int
}

func (q FeedQuery) values() url.Values {
	v := url.Values{}
	if q.FeedType != "" {
		v.Set("feedType", q.FeedType)
	}
	if q.UserID != 0 {
		v.Set("userId", strconv.FormatUint(uint64(q.UserID), 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// LikeState is a post's like status as seen by the caller.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// Friendship is a friendship row.
type Friendship struct {
	ID          uint      `json:"id"`
	InitiatorID uint      `json:"initiator_id"`
	ReceiverID  uint      `json:"receiver_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// FriendEntry is one friendship from the caller's point of view.
type FriendEntry struct {
	FriendshipID uint      `json:"friendship_id"`
	Status       string    `json:"status"`
	User         Author    `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

// FriendLists splits the caller's friendships by direction and state.
type FriendLists struct {
	Incoming []FriendEntry `json:"incoming"`
	Outgoing []FriendEntry `json:"outgoing"`
	Accepted []FriendEntry `json:"accepted"`
}

// ListFeed returns one page of posts.
func (c *Client) ListFeed(ctx context.Context, q FeedQuery) ([]Post, error) {
	var out struct {
		Data []Post `json:"data"`
	}
	path := "/api/posts"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreatePost logs a drink.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (*Post, error) {
	var out struct {
		Data Post `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/posts", p, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// LikePost likes a post. Liking an already liked post is not an error.
func (c *Client) LikePost(ctx context.Context, postID uint) (LikeState, error) {
	return c.like(ctx, http.MethodPost, postID)
}

// UnlikePost removes the caller's like, if any.
func (c *Client) UnlikePost(ctx context.Context, postID uint) (LikeState, error) {
	return c.like(ctx, http.MethodDelete, postID)
}

func (c *Client) like(ctx context.Context, method string, postID uint) (LikeState, error) {
	var out LikeState
	err := c.do(ctx, method, fmt.Sprintf("/api/posts/%d/like", postID), nil, &out)
	return out, err
}

// SendFriendRequest opens a request from the caller to receiverID.
func (c *Client) SendFriendRequest(ctx context.Context, receiverID uint) (*Friendship, error) {
	var out struct {
		Data Friendship `json:"data"`
	}
	body := map[string]uint{"receiverId": receiverID}
	if err := c.do(ctx, http.MethodPost, "/api/friends/request", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// AcceptFriendRequest accepts a pending request addressed to the caller.
func (c *Client) AcceptFriendRequest(ctx context.Context, friendshipID uint) (*Friendship, error) {
	var out struct {
		Data Friendship `json:"data"`
	}
	body := map[string]uint{"friendshipId": friendshipID}
	if err := c.do(ctx, http.MethodPost, "/api/friends/accept", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListFriends returns the caller's incoming, outgoing and accepted lists.
func (c *Client) ListFriends(ctx context.Context) (*FriendLists, error) {
	var out FriendLists
	if err := c.do(ctx, http.MethodGet, "/api/friends/list", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id, ok := mutationIDFrom(ctx); ok {
		req.Header.Set(MutationHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
