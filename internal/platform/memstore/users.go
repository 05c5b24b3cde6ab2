package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/campus-finance/finance/internal/users"
)

// Users implements the user store over Store.
type Users struct {
	s *Store
}

func (u *Users) Create(ctx context.Context, name, role string) (*users.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.userSeq++
	user := users.User{ID: u.s.userSeq, Name: name, Role: role}
	u.s.users[user.ID] = user
	return &user, nil
}

func (u *Users) CreateWithID(ctx context.Context, id int64, name, role string) (*users.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; ok {
		return nil, errors.New("memstore: user id already in use")
	}
	user := users.User{ID: id, Name: name, Role: role}
	u.s.users[id] = user
	if id > u.s.userSeq {
		u.s.userSeq = id
	}
	return &user, nil
}

func (u *Users) Get(ctx context.Context, id int64) (*users.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

func (u *Users) List(ctx context.Context) ([]users.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	out := make([]users.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (u *Users) Update(ctx context.Context, id int64, name, role string) (*users.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	user.Name, user.Role = name, role
	u.s.users[id] = user
	return &user, nil
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; !ok {
		return users.ErrNotFound
	}
	delete(u.s.users, id)
	return nil
}
