package memory

import (
	"context"
	"time"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func (q *queries) CreateUser(ctx context.Context, u *models.User) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.st.users {
		if existing.username == u.Username {
			return store.ErrDuplicateKey
		}
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	u.ID = q.st.nextID()
	q.st.users[u.ID] = userRow{
		username:     u.Username,
		email:        u.Email,
		passwordHash: u.PasswordHash,
		superuser:    u.IsSuperuser,
		dateJoined:   u.DateJoined,
	}
	for _, g := range u.Groups {
		q.st.addMember(g, u.ID)
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id int64) (*models.User, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	u, ok := q.st.user(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, r := range q.st.users {
		if r.username == username {
			u, _ := q.st.user(id)
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (q *queries) DeleteUser(ctx context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.users[id]; !ok {
		return store.ErrNotFound
	}
	for lineID, l := range q.st.cart {
		if l.userID == id {
			delete(q.st.cart, lineID)
		}
	}
	for orderID, o := range q.st.orders {
		switch {
		case o.userID == id:
			q.st.deleteOrder(orderID)
		case o.deliveryCrewID != nil && *o.deliveryCrewID == id:
			o.deliveryCrewID = nil
			q.st.orders[orderID] = o
		}
	}
	for _, members := range q.st.groups {
		delete(members, id)
	}
	for key, owner := range q.st.tokens {
		if owner == id {
			delete(q.st.tokens, key)
		}
	}
	delete(q.st.users, id)
	return nil
}

func (q *queries) ListGroupMembers(ctx context.Context, group string) ([]models.User, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	users := []models.User{}
	for _, id := range sortedKeys(q.st.groups[group]) {
		u, _ := q.st.user(id)
		users = append(users, *u)
	}
	return users, nil
}

func (q *queries) AddUserToGroup(ctx context.Context, userID int64, group string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.users[userID]; !ok {
		return store.ErrForeignKeyViolation
	}
	q.st.addMember(group, userID)
	return nil
}

func (s *state) addMember(group string, userID int64) {
	members, ok := s.groups[group]
	if !ok {
		members = map[int64]struct{}{}
		s.groups[group] = members
	}
	members[userID] = struct{}{}
}

func (q *queries) RemoveUserFromGroup(ctx context.Context, userID int64, group string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	members := q.st.groups[group]
	if _, ok := members[userID]; !ok {
		return false, nil
	}
	delete(members, userID)
	return true, nil
}

func (q *queries) GetToken(ctx context.Context, userID int64) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key, owner := range q.st.tokens {
		if owner == userID {
			return key, nil
		}
	}
	return "", store.ErrNotFound
}

func (q *queries) CreateToken(ctx context.Context, userID int64, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.users[userID]; !ok {
		return store.ErrForeignKeyViolation
	}
	if _, taken := q.st.tokens[key]; taken {
		return store.ErrDuplicateKey
	}
	for _, owner := range q.st.tokens {
		if owner == userID {
			return store.ErrDuplicateKey
		}
	}
	q.st.tokens[key] = userID
	return nil
}

func (q *queries) GetUserByToken(ctx context.Context, key string) (*models.User, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id, ok := q.st.tokens[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	u, _ := q.st.user(id)
	return u, nil
}
