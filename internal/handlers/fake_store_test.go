package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/models"
	"github.com/blogspace/patientzero/internal/recommend"
	"github.com/blogspace/patientzero/internal/votes"
)

// memStore is an in-memory stand-in for database.Store.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	users    map[string]*models.User
	tokens   map[string]string
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	profiles map[string]*models.HealthProfile
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		tokens:   map[string]string{},
		posts:    map[uint]*models.Post{},
		comments: map[uint]*models.Comment{},
		profiles: map[string]*models.HealthProfile{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Username]; ok {
		return database.ErrDuplicateUsername
	}
	user.ID = m.id()
	u := *user
	m.users[user.Username] = &u
	return nil
}

func (m *memStore) GetUser(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUser(ctx context.Context, username string, req models.UpdateUserRequest) (*models.User, error) {
	m.mu.Lock()
	u, ok := m.users[username]
	if ok {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.ProfilePicture != nil {
			u.ProfilePicture = *req.ProfilePicture
		}
	}
	m.mu.Unlock()
	return m.GetUser(ctx, username)
}

func (m *memStore) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	if _, err := m.GetUser(ctx, username); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.UserStats
	for _, p := range m.posts {
		if p.Username == username {
			s.Posts++
			s.Likes += int64(len(p.Upvotes))
		}
	}
	for _, c := range m.comments {
		if c.Username == username {
			s.Comments++
		}
	}
	return &s, nil
}

func (m *memStore) SaveRefreshToken(_ context.Context, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = username
	return nil
}

func (m *memStore) RefreshTokenExists(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[token]
	return ok, nil
}

func (m *memStore) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *memStore) CreatePost(_ context.Context, username string, req models.CreatePostRequest) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Username == username && p.Title == req.Title {
			return nil, database.ErrDuplicateTitle
		}
	}
	category, tags := req.Categories.Canonical(req.Tags)
	p := &models.Post{
		ID:          m.id(),
		Title:       req.Title,
		Description: req.Description,
		Username:    username,
		Categories:  category,
		Tags:        pq.StringArray(tags),
		Upvotes:     pq.StringArray{},
		Downvotes:   pq.StringArray{},
		CreatedDate: time.Now(),
	}
	m.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memStore) GetPost(_ context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListPosts(_ context.Context, filter database.PostFilter, page, limit int) (*models.PostPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if filter.Username != "" && p.Username != filter.Username {
			continue
		}
		out = append(out, *p)
	}
	return &models.PostPage{Data: out, Total: int64(len(out)), Page: page, TotalPages: 1}, nil
}

func (m *memStore) SearchPosts(_ context.Context, query string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for _, p := range m.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) RecentPosts(context.Context, int) ([]models.Post, error) {
	return nil, nil
}

func (m *memStore) UpdatePost(ctx context.Context, id uint, username string, req models.UpdatePostRequest) (*models.Post, error) {
	m.mu.Lock()
	p, ok := m.posts[id]
	switch {
	case !ok:
		m.mu.Unlock()
		return nil, database.ErrNotFound
	case p.Username != username:
		m.mu.Unlock()
		return nil, database.ErrForbidden
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	m.mu.Unlock()
	return m.GetPost(ctx, id)
}

func (m *memStore) DeletePost(_ context.Context, id uint, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return database.ErrNotFound
	}
	if p.Username != username {
		return database.ErrForbidden
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *memStore) VotePost(_ context.Context, id uint, voter string, voteType votes.Type) (*models.Post, votes.Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, votes.Tally{}, database.ErrNotFound
	}
	t := votes.Apply(p.Upvotes, p.Downvotes, voter, voteType)
	p.Upvotes, p.Downvotes, p.Score = t.Upvotes, t.Downvotes, t.Score
	cp := *p
	return &cp, t, nil
}

func (m *memStore) CreateComment(_ context.Context, postID uint, username, body string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[postID]; !ok {
		return nil, database.ErrNotFound
	}
	c := &models.Comment{
		ID:        m.id(),
		PostID:    postID,
		Username:  username,
		Body:      body,
		Upvotes:   pq.StringArray{},
		Downvotes: pq.StringArray{},
	}
	m.comments[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) ListComments(_ context.Context, postID uint) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) DeleteComment(_ context.Context, id uint, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return database.ErrNotFound
	}
	if c.Username != username {
		return database.ErrForbidden
	}
	delete(m.comments, id)
	return nil
}

func (m *memStore) VoteComment(_ context.Context, id uint, voter string, voteType votes.Type) (*models.Comment, votes.Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, votes.Tally{}, database.ErrNotFound
	}
	t := votes.Apply(c.Upvotes, c.Downvotes, voter, voteType)
	c.Upvotes, c.Downvotes, c.Score = t.Upvotes, t.Downvotes, t.Score
	cp := *c
	return &cp, t, nil
}

func (m *memStore) GetHealthProfile(_ context.Context, username string) (*models.HealthProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[username]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpsertHealthProfile(ctx context.Context, username string, req models.HealthProfileRequest) (*models.HealthProfile, error) {
	m.mu.Lock()
	p, ok := m.profiles[username]
	if !ok {
		p = &models.HealthProfile{Username: username}
		m.profiles[username] = p
	}
	p.Conditions = req.Conditions
	p.Goals = req.Goals
	if req.CurrentStatus != p.CurrentStatus {
		p.History = append(p.History, models.HealthStatusUpdate{Status: req.CurrentStatus})
	}
	p.CurrentStatus = req.CurrentStatus
	m.mu.Unlock()
	return m.GetHealthProfile(ctx, username)
}

func (m *memStore) RecordStatus(ctx context.Context, username, status, condition string) (*models.HealthProfile, error) {
	m.mu.Lock()
	p, ok := m.profiles[username]
	if !ok {
		p = &models.HealthProfile{Username: username}
		m.profiles[username] = p
	}
	if condition != "" {
		p.Conditions = append(p.Conditions, condition)
	}
	if status != p.CurrentStatus {
		p.History = append(p.History, models.HealthStatusUpdate{Status: status})
	}
	p.CurrentStatus = status
	m.mu.Unlock()
	return m.GetHealthProfile(ctx, username)
}

type fakeRecommender struct {
	got  recommend.Profile
	recs []recommend.Recommendation
	err  error
}

func (f *fakeRecommender) Recommend(_ context.Context, p recommend.Profile) ([]recommend.Recommendation, error) {
	f.got = p
	return f.recs, f.err
}

type fakeAnalyzer struct {
	previous string
	result   recommend.Analysis
	err      error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, previous, _ string, _ recommend.Profile) (recommend.Analysis, error) {
	f.previous = previous
	return f.result, f.err
}
