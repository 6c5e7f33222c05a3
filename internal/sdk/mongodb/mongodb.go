// Package mongodb provides document store operations for the social media service.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
)

var (
	ErrDBNotFound        = errors.New("document not found")
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrDBInvalidID       = errors.New("invalid object id")
)

// Service represents a service that interacts with the user document store.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the store connection.
	Close() error

	// User operations
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ListUsers(ctx context.Context, query models.UserQuery) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, userID string, upd models.UpdateUser) (models.User, error)
	UpdateUserPassword(ctx context.Context, userID string, passwordHash string) error
	DeleteUser(ctx context.Context, userID string) error

	// Password reset token operations
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	GetUserByResetToken(ctx context.Context, token string) (models.User, error)
	ClearResetToken(ctx context.Context, userID string) error

	// Follow graph operations
	AddFollow(ctx context.Context, followerID, followeeID string) error
	RemoveFollow(ctx context.Context, followerID, followeeID string) error
	RemoveFromFollowLists(ctx context.Context, userID string) error
}

type service struct {
	client *mongo.Client
	users  *mongo.Collection
}

var (
	uri        = os.Getenv("MONGO_URI")
	database   = os.Getenv("MONGO_DATABASE")
	dbInstance *service
)

func New() Service {
	// Reuse connection
	if dbInstance != nil {
		return dbInstance
	}

	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = "social_media"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal(err)
	}

	users := client.Database(database).Collection("users")

	// Email uniqueness is enforced by the store, not the handlers.
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("creating email index: %v", err)
	}

	dbInstance = &service{
		client: client,
		users:  users,
	}
	return dbInstance
}

// Health checks the health of the store connection by pinging the server.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.client.Ping(ctx, nil); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["database"] = database

	count, err := s.users.EstimatedDocumentCount(ctx)
	if err == nil {
		stats["users"] = strconv.FormatInt(count, 10)
	}

	return stats
}

// Close closes the store connection.
func (s *service) Close() error {
	log.Printf("Disconnected from database: %s", database)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ---------------------------------------------
// User operations
// ---------------------------------------------

// CreateUser inserts a new user document into the store.
func (s *service) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
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

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by its hex identifier.
func (s *service) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, ErrDBInvalidID
	}

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by its (lowercased) email address.
func (s *service) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return user, nil
}

// GetUsersByIDs retrieves the users whose ids appear in ids. Missing ids are
// skipped silently; follow lists may reference deleted accounts.
func (s *service) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("selecting users by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return users, nil
}

// ListUsers retrieves a filtered, sorted, paginated page of users together
// with the total count matching the filter.
func (s *service) ListUsers(ctx context.Context, query models.UserQuery) ([]models.User, int64, error) {
	filter := bson.M{}
	if query.Role != "" {
		filter["role"] = query.Role
	}
	if query.Active != nil {
		filter["active"] = *query.Active
	}
	if query.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"displayName": pattern},
		}
	}

	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	sortField := query.SortBy
	if sortField == "" {
		sortField = "createdAt"
	}
	direction := 1
	if query.SortDesc {
		direction = -1
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decoding users: %w", err)
	}

	return users, total, nil
}

// UpdateUser applies the non-nil fields of upd to the user document and
// returns the updated document.
func (s *service) UpdateUser(ctx context.Context, userID string, upd models.UpdateUser) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, ErrDBInvalidID
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.DisplayName != nil {
		set["displayName"] = *upd.DisplayName
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Interests != nil {
		set["interests"] = *upd.Interests
	}
	if upd.ProfilePicture != nil {
		set["profilePicture"] = *upd.ProfilePicture
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if upd.Private != nil {
		set["private"] = *upd.Private
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrDBNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		return models.User{}, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *service) UpdateUserPassword(ctx context.Context, userID string, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrDBInvalidID
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password":  passwordHash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	return nil
}

// DeleteUser removes a user document.
func (s *service) DeleteUser(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrDBInvalidID
	}

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrDBNotFound
	}

	return nil
}

// ---------------------------------------------
// Password reset token operations
// ---------------------------------------------

// SetResetToken stores a reset token with its expiry on the user document.
// An earlier unconsumed token is overwritten.
func (s *service) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrDBInvalidID
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": expires,
		"updatedAt":            time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	return nil
}

// GetUserByResetToken retrieves the user holding an unexpired reset token.
// Expired or unknown tokens both come back as ErrDBNotFound.
func (s *service) GetUserByResetToken(ctx context.Context, token string) (models.User, error) {
	filter := bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": time.Now().UTC()},
	}

	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by reset token: %w", err)
	}

	return user, nil
}

// ClearResetToken removes the reset token fields from the user document.
func (s *service) ClearResetToken(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrDBInvalidID
	}

	_, err = s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("clearing reset token: %w", err)
	}

	return nil
}

// ---------------------------------------------
// Follow graph operations
// ---------------------------------------------

// AddFollow records follower → followee on both documents. Each side is a
// single-document $addToSet, so a concurrent duplicate request degrades to a
// no-op rather than a double entry.
func (s *service) AddFollow(ctx context.Context, followerID, followeeID string) error {
	followerOID, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return ErrDBInvalidID
	}
	followeeOID, err := primitive.ObjectIDFromHex(followeeID)
	if err != nil {
		return ErrDBInvalidID
	}

	now := time.Now().UTC()

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": followeeOID}, bson.M{
		"$addToSet": bson.M{"followers": followerOID},
		"$set":      bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("adding follower: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	res, err = s.users.UpdateOne(ctx, bson.M{"_id": followerOID}, bson.M{
		"$addToSet": bson.M{"following": followeeOID},
		"$set":      bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("adding following: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	return nil
}

// RemoveFollow removes follower → followee from both documents.
func (s *service) RemoveFollow(ctx context.Context, followerID, followeeID string) error {
	followerOID, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return ErrDBInvalidID
	}
	followeeOID, err := primitive.ObjectIDFromHex(followeeID)
	if err != nil {
		return ErrDBInvalidID
	}

	now := time.Now().UTC()

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": followeeOID}, bson.M{
		"$pull": bson.M{"followers": followerOID},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("removing follower: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	res, err = s.users.UpdateOne(ctx, bson.M{"_id": followerOID}, bson.M{
		"$pull": bson.M{"following": followeeOID},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("removing following: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDBNotFound
	}

	return nil
}

// RemoveFromFollowLists pulls a deleted user's id out of every other user's
// followers and following arrays. Best effort batch update.
func (s *service) RemoveFromFollowLists(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrDBInvalidID
	}

	_, err = s.users.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{"followers": oid, "following": oid},
	})
	if err != nil {
		return fmt.Errorf("removing user from follow lists: %w", err)
	}

	return nil
}

// ---------------------------------------------
// Helpers
// ---------------------------------------------

// TotalPages computes the page count for a result set.
func TotalPages(total, limit int64) int64 {
	if limit < 1 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDBNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDBDuplicatedEntry)
}

// IsInvalidID checks if the error is an invalid identifier error.
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrDBInvalidID)
}
