package auth

import (
	"errors"
	"sync"

	"gorm.io/gorm"
)

// Storage is the persistence interface for user accounts.
type Storage interface {
	Create(u *User) error
	ByEmail(email string) (*User, error)
	ByID(id uint) (*User, error)
}

// GormStorage implements Storage on a relational database.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (g *GormStorage) Create(u *User) error {
	return g.db.Create(u).Error
}

func (g *GormStorage) ByEmail(email string) (*User, error) {
	var u User
	if err := g.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (g *GormStorage) ByID(id uint) (*User, error) {
	var u User
	if err := g.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// LocalStorage provides an in-memory Storage for tests.
type LocalStorage struct {
	mu     sync.Mutex
	users  map[uint]*User
	nextID uint
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{users: map[uint]*User{}, nextID: 1}
}

func (l *LocalStorage) Create(u *User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u.ID == 0 {
		u.ID = l.nextID
		l.nextID++
	}
	l.users[u.ID] = u
	return nil
}

func (l *LocalStorage) ByEmail(email string) (*User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (l *LocalStorage) ByID(id uint) (*User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}
