package app

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
)

// fakeStore is an in-memory mongodb.Service used by the handler tests.
type fakeStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *fakeStore) Health() map[string]string { return map[string]string{"status": "up"} }
func (s *fakeStore) Close() error              { return nil }

func (s *fakeStore) CreateUser(_ context.Context, nu models.NewUser) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == nu.Email {
			return models.User{}, mongodb.ErrDBDuplicatedEntry
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      nu.Name,
		Email:     nu.Email,
		Password:  nu.Password,
		Role:      nu.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, userID string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[oid]
	if !ok {
		return models.User{}, mongodb.ErrDBNotFound
	}
	return user, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, mongodb.ErrDBNotFound
}

func (s *fakeStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeStore) ListUsers(_ context.Context, query models.UserQuery) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.User
	for _, u := range s.users {
		if query.Role != "" && u.Role != query.Role {
			continue
		}
		if query.Active != nil && u.Active != *query.Active {
			continue
		}
		if query.Search != "" && !containsFold(u.Name, query.Search) &&
			!containsFold(u.Email, query.Search) && !containsFold(u.DisplayName, query.Search) {
			continue
		}
		matched = append(matched, u)
	}

	total := int64(len(matched))

	start := (query.Page - 1) * query.Limit
	if start > total {
		return nil, total, nil
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *fakeStore) UpdateUser(_ context.Context, userID string, upd models.UpdateUser) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[oid]
	if !ok {
		return models.User{}, mongodb.ErrDBNotFound
	}

	if upd.Email != nil {
		for id, u := range s.users {
			if id != oid && u.Email == *upd.Email {
				return models.User{}, mongodb.ErrDBDuplicatedEntry
			}
		}
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.DisplayName != nil {
		user.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Interests != nil {
		user.Interests = *upd.Interests
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}
	if upd.Active != nil {
		user.Active = *upd.Active
	}
	if upd.Private != nil {
		user.Private = *upd.Private
	}
	user.UpdatedAt = time.Now().UTC()

	s.users[oid] = user
	return user, nil
}

func (s *fakeStore) UpdateUserPassword(_ context.Context, userID string, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[oid]
	if !ok {
		return mongodb.ErrDBNotFound
	}
	user.Password = passwordHash
	user.UpdatedAt = time.Now().UTC()
	s.users[oid] = user
	return nil
}

func (s *fakeStore) DeleteUser(_ context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[oid]; !ok {
		return mongodb.ErrDBNotFound
	}
	delete(s.users, oid)
	return nil
}

func (s *fakeStore) SetResetToken(_ context.Context, userID, token string, expires time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[oid]
	if !ok {
		return mongodb.ErrDBNotFound
	}
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = expires
	s.users[oid] = user
	return nil
}

func (s *fakeStore) GetUserByResetToken(_ context.Context, token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == token && u.ResetPasswordExpires.After(time.Now()) {
			return u, nil
		}
	}
	return models.User{}, mongodb.ErrDBNotFound
}

func (s *fakeStore) ClearResetToken(_ context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[oid]
	if !ok {
		return mongodb.ErrDBNotFound
	}
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = time.Time{}
	s.users[oid] = user
	return nil
}

func (s *fakeStore) AddFollow(_ context.Context, followerID, followeeID string) error {
	followerOID, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}
	followeeOID, err := primitive.ObjectIDFromHex(followeeID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.users[followerOID]
	if !ok {
		return mongodb.ErrDBNotFound
	}
	followee, ok := s.users[followeeOID]
	if !ok {
		return mongodb.ErrDBNotFound
	}

	if !followee.HasFollower(followerOID) {
		followee.Followers = append(followee.Followers, followerOID)
	}
	if !follower.IsFollowing(followeeOID) {
		follower.Following = append(follower.Following, followeeOID)
	}
	s.users[followerOID] = follower
	s.users[followeeOID] = followee
	return nil
}

func (s *fakeStore) RemoveFollow(_ context.Context, followerID, followeeID string) error {
	followerOID, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}
	followeeOID, err := primitive.ObjectIDFromHex(followeeID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.users[followerOID]
	if !ok {
		return mongodb.ErrDBNotFound
	}
	followee, ok := s.users[followeeOID]
	if !ok {
		return mongodb.ErrDBNotFound
	}

	followee.Followers = removeID(followee.Followers, followerOID)
	follower.Following = removeID(follower.Following, followeeOID)
	s.users[followerOID] = follower
	s.users[followeeOID] = followee
	return nil
}

func (s *fakeStore) RemoveFromFollowLists(_ context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return mongodb.ErrDBInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		u.Followers = removeID(u.Followers, oid)
		u.Following = removeID(u.Following, oid)
		s.users[id] = u
	}
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return len(needle) == 0 || indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	h := []rune(haystack)
	n := []rune(needle)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if toLowerRune(h[i+j]) != toLowerRune(n[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
