// Package testutil provides in-memory stand-ins for the Postgres
// repositories, with the same error contract.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
)

// Store holds users and posts in memory. Setting Err makes every call fail
// with it, which simulates an unreachable database.
type Store struct {
	mu     sync.Mutex
	users  map[int64]models.User
	posts  map[int64]models.Post
	nextU  int64
	nextP  int64
	writes int

	Err error
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: map[int64]models.User{},
		posts: map[int64]models.Post{},
		Now:   func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// Users returns a view of s satisfying the user store interfaces.
func (s *Store) Users() *Users { return &Users{s: s} }

// Posts returns a view of s satisfying the post store interface.
func (s *Store) Posts() *Posts { return &Posts{s: s} }

// Writes counts successful mutations.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// SeedUser inserts a user with a fixed id, bypassing the id sequence.
func (s *Store) SeedUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	if u.ID > s.nextU {
		s.nextU = u.ID
	}
}

// DeleteUser removes a user and the posts it owns.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.OwnerID == id {
			delete(s.posts, pid)
		}
	}
}

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, email, passwordHash string, phoneNumber *string) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, existing := range s.users {
		if existing.Email == email {
			return nil, fmt.Errorf("create user: %w", repository.ErrDuplicateEmail)
		}
	}
	s.nextU++
	user := models.User{ID: s.nextU, Email: email, PasswordHash: passwordHash, PhoneNumber: phoneNumber, CreatedAt: s.Now()}
	s.users[user.ID] = user
	s.writes++
	return &user, nil
}

func (u *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", repository.ErrNotFound)
	}
	return &user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", repository.ErrNotFound)
}

type Posts struct{ s *Store }

func (p *Posts) List(_ context.Context, f models.PostFilter) ([]models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if f.Search == "" || strings.Contains(strings.ToLower(post.Title), strings.ToLower(f.Search)) {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Offset >= len(out) {
		return []models.Post{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (p *Posts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("get post: %w", repository.ErrNotFound)
	}
	return &post, nil
}

func (p *Posts) Create(_ context.Context, ownerID int64, in models.PostInput) (*models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.nextP++
	post := models.Post{
		ID:        s.nextP,
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
		OwnerID:   ownerID,
		CreatedAt: s.Now(),
	}
	s.posts[post.ID] = post
	s.writes++
	return &post, nil
}

// owned must be called with s.mu held.
func (s *Store) owned(id, actorID int64) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, repository.ErrNotFound
	}
	if post.OwnerID != actorID {
		return models.Post{}, repository.ErrNotOwner
	}
	return post, nil
}

func (p *Posts) Update(_ context.Context, id, actorID int64, in models.PostInput) (*models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	post, err := s.owned(id, actorID)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	post.Title, post.Content, post.Published = in.Title, in.Content, in.Published
	s.posts[id] = post
	s.writes++
	return &post, nil
}

func (p *Posts) Delete(_ context.Context, id, actorID int64) error {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, err := s.owned(id, actorID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	delete(s.posts, id)
	s.writes++
	return nil
}
