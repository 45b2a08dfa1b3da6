package service

import (
	"context"
	"sort"
	"sync"

	"calc_service/internal/common"
	"calc_service/internal/domain/model"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return common.ErrDuplicateUser
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type fakeCalcRepo struct {
	mu    sync.Mutex
	calcs map[string]*model.Calculation
}

func newFakeCalcRepo() *fakeCalcRepo {
	return &fakeCalcRepo{calcs: map[string]*model.Calculation{}}
}

func (r *fakeCalcRepo) Create(_ context.Context, calc *model.Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *calc
	r.calcs[calc.ID] = &cp
	return nil
}

func (r *fakeCalcRepo) FindByID(_ context.Context, id string) (*model.Calculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calcs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCalcRepo) ListByUser(_ context.Context, userID string, page, pageSize int) ([]model.Calculation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []model.Calculation
	for _, c := range r.calcs {
		if c.UserID == userID {
			owned = append(owned, *c)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	total := len(owned)
	start := (page - 1) * pageSize
	if start >= total {
		return []model.Calculation{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (r *fakeCalcRepo) Update(_ context.Context, calc *model.Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calcs[calc.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *calc
	r.calcs[calc.ID] = &cp
	return nil
}

func (r *fakeCalcRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calcs[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.calcs, id)
	return nil
}

type fakeThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func newFakeThrottle(max int) *fakeThrottle {
	return &fakeThrottle{max: max, failures: map[string]int{}}
}

func (t *fakeThrottle) TooManyAttempts(_ context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[id] >= t.max, nil
}

func (t *fakeThrottle) RecordFailure(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[id]++
	return nil
}

func (t *fakeThrottle) Reset(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, id)
	return nil
}
