package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/notification"
	"github.com/cambria/academy/core/user"
)

type (
	DB struct {
		user         *userTable
		location     *locationTable
		hour         *hourTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	locationTable struct {
		sync.RWMutex
		table map[string]*campus.Location
	}

	hourTable struct {
		sync.RWMutex
		table map[string]*hours.Entry
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
		order []string // insertion order
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		location:     &locationTable{table: make(map[string]*campus.Location)},
		hour:         &hourTable{table: make(map[string]*hours.Entry)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
}

func newID() string {
	return uuid.New().String()
}
