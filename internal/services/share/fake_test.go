package share

import (
	"context"
	"sync"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// memRepo — хранилище в памяти с семантикой PostgreSQL-репозитория.
type memRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	lists  map[string]*models.TaskList
	shares []*models.Share
}

func newMemRepo() *memRepo {
	return &memRepo{
		users: map[string]*models.User{},
		lists: map[string]*models.TaskList{},
	}
}

func (r *memRepo) addUser(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Plan == "" {
		u.Plan = models.PlanFree
	}
	r.users[u.UUID] = &u
}

func (r *memRepo) addList(l models.TaskList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[l.ID] = &l
}

func (r *memRepo) setPlan(uid string, plan models.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[uid].Plan = plan
}

func (r *memRepo) user(uid string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[uid]
}

func (r *memRepo) ActivateTrial(_ context.Context, userUID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok || u.Plan != models.PlanFree || u.PremiumTrialActivatedAt != nil {
		return false, nil
	}
	u.PremiumTrialActivatedAt = &at
	return true, nil
}

func (r *memRepo) CountSharesByList(_ context.Context, listID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.shares {
		if s.TaskListID == listID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) GetUser(_ context.Context, userUID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetTaskList(_ context.Context, listID string) (*models.TaskList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[listID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memRepo) ShareExists(_ context.Context, listID, userUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.TaskListID == listID && s.UserUID == userUID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateShare(_ context.Context, share models.Share) (*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.TaskListID == share.TaskListID && s.UserUID == share.UserUID {
			return nil, repository.ErrAlreadyExists
		}
	}
	share.ID = len(r.shares) + 1
	share.CreatedAt = time.Now()
	r.shares = append(r.shares, &share)
	cp := share
	return &cp, nil
}

func (r *memRepo) ListShares(_ context.Context, listID string) ([]*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*models.Share
	for _, s := range r.shares {
		if s.TaskListID == listID {
			cp := *s
			res = append(res, &cp)
		}
	}
	return res, nil
}
