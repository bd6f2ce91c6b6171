package memory

import (
	"context"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/model"
)

func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// CreateUser stores the record as given, apart from ID and CreatedAt.
// Username and FranchiseeID are unique, matching the relational schema.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", "username", user.Username)
		}
		if u.FranchiseeID == user.FranchiseeID {
			return apperror.Conflict("user", "franchiseeId", user.FranchiseeID)
		}
	}

	user.ID = s.userSeq.next()
	user.CreatedAt = s.timestamp()
	s.users[user.ID] = cloneUser(user)
	return nil
}
