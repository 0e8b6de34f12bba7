package inmemdb

import (
	"context"

	"github.com/cambria/academy/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotifications(_ context.Context, ns []notification.Notification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, n := range ns {
		n := n
		n.ID = newID()
		repo.db.table[n.ID] = &n
		repo.db.order = append(repo.db.order, n.ID)
	}
	return nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, userID string, limit int) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ns := make([]notification.Notification, 0)
	for i := len(repo.db.order) - 1; i >= 0 && (limit <= 0 || len(ns) < limit); i-- {
		if n := repo.db.table[repo.db.order[i]]; n.UserID == userID {
			ns = append(ns, *n)
		}
	}
	return ns, nil
}

func (repo *notificationRepository) CountUnread(_ context.Context, userID string, types ...notification.Type) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, n := range repo.db.table {
		if n.UserID != userID || n.IsRead {
			continue
		}
		if len(types) > 0 && !containsType(types, n.Type) {
			continue
		}
		count++
	}
	return count, nil
}

func (repo *notificationRepository) MarkRead(_ context.Context, filter notification.MarkFilter) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for _, n := range repo.db.table {
		if n.IsRead || !matchNotification(*n, filter) {
			continue
		}
		n.IsRead = true
		count++
	}
	return count, nil
}

func matchNotification(n notification.Notification, filter notification.MarkFilter) bool {
	if filter.UserID != "" && n.UserID != filter.UserID {
		return false
	}
	if len(filter.IDs) > 0 && !containsString(filter.IDs, n.ID) {
		return false
	}
	if filter.Type != "" && n.Type != filter.Type {
		return false
	}
	if filter.Thread != nil {
		ref, ok := n.Metadata.(notification.ThreadRef)
		if !ok || ref != *filter.Thread {
			return false
		}
	}
	if filter.Submission != nil {
		ref, ok := n.Metadata.(notification.SubmissionRef)
		if !ok || ref != *filter.Submission {
			return false
		}
	}
	return true
}

func containsType(types []notification.Type, t notification.Type) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
