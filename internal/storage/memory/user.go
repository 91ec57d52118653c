package memory

import (
	"context"
	"strings"

	"github.com/linemk/doggys-shop/internal/domain/models"
	"github.com/linemk/doggys-shop/internal/storage"
)

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return nil, storage.ErrEmailTaken
	}
	s.seqUsers++
	user.ID = s.seqUsers
	user.CreatedAt = s.now()
	s.users[user.ID] = cloneUser(user)
	return user, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context, filter models.ListFilter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*models.User
	for _, id := range sortedKeys(s.users) {
		u := s.users[id]
		if containsFold(u.Name, filter.Query) {
			users = append(users, cloneUser(u))
		}
	}
	return page(users, filter.Offset, filter.Limit), nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return storage.ErrEmailTaken
	}
	u.Name = user.Name
	u.Email = user.Email
	u.Phone = user.Phone
	u.Address = user.Address
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PassHash = append([]byte(nil), passHash...)
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	for _, o := range s.orders {
		if o.UserID == id {
			return storage.ErrUserReferenced
		}
	}
	delete(s.users, id)
	return nil
}

// вызывается под s.mu
func (s *Store) emailTaken(email string, exceptID int64) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
