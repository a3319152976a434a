package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

const (
	usersCollection  = "users"
	actorsCollection = "actors"

	usersNameIndex  = "users_name_unique"
	usersEmailIndex = "users_email_unique"
	actorsUserIndex = "actors_user_id_unique"
)

var (
	_ ports.CredentialStore = (*AccountRepository)(nil)
	_ ports.AccountStore    = (*AccountRepository)(nil)
)

// AccountRepository stores users and their actors. Uniqueness of name and
// email is enforced by unique indexes; see EnsureIndexes.
type AccountRepository struct {
	db     *mongo.Database
	users  *mongo.Collection
	actors *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		db:     db,
		users:  db.Collection(usersCollection),
		actors: db.Collection(actorsCollection),
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	DisplayName  string             `bson:"display_name"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	Active       bool               `bson:"active"`
	Locale       string             `bson:"locale,omitempty"`
	ConfirmedAt  *time.Time         `bson:"confirmed_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type mongoActor struct {
	ID                primitive.ObjectID    `bson:"_id,omitempty"`
	UserID            primitive.ObjectID    `bson:"user_id"`
	PreferredUsername string                `bson:"preferred_username"`
	Name              string                `bson:"name"`
	Summary           string                `bson:"summary"`
	URL               string                `bson:"url"`
	InboxURL          string                `bson:"inbox_url"`
	OutboxURL         string                `bson:"outbox_url"`
	FollowersURL      string                `bson:"followers_url"`
	FollowingURL      string                `bson:"following_url"`
	AvatarURL         string                `bson:"avatar_url,omitempty"`
	HeaderURL         string                `bson:"header_url,omitempty"`
	Locked            bool                  `bson:"locked"`
	Bot               bool                  `bson:"bot"`
	MovedToID         *primitive.ObjectID   `bson:"moved_to_id,omitempty"`
	Fields            []domain.ProfileField `bson:"fields,omitempty"`
	Emojis            []domain.Emoji        `bson:"emojis,omitempty"`
	CreatedAt         time.Time             `bson:"created_at"`
}

// CreateWithActor inserts the user and its actor in one multi-document
// transaction. The deployment must be a replica set.
func (r *AccountRepository) CreateWithActor(ctx context.Context, user *domain.User, actor *domain.Actor) (*domain.User, *domain.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	mu := toMongoUser(user)
	mu.ID = primitive.NewObjectID()
	ma, err := toMongoActor(actor)
	if err != nil {
		return nil, nil, err
	}
	ma.ID = primitive.NewObjectID()
	ma.UserID = mu.ID

	sess, err := r.db.Client().StartSession()
	if err != nil {
		return nil, nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.users.InsertOne(sc, mu); err != nil {
			return nil, err
		}
		if _, err := r.actors.InsertOne(sc, ma); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, duplicateUserError(err)
		}
		return nil, nil, fmt.Errorf("create user with actor: %w", err)
	}

	return fromMongoUser(mu), fromMongoActor(ma), nil
}

// duplicateUserError maps a duplicate key failure to the violated field.
func duplicateUserError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, usersNameIndex):
		return domain.ErrDuplicateName
	case strings.Contains(msg, usersEmailIndex):
		return domain.ErrDuplicateEmail
	}
	return fmt.Errorf("create user with actor: %w", err)
}

func (r *AccountRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"name": name})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findUser(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

// MarkConfirmed sets the confirmation timestamp of a user.
func (r *AccountRepository) MarkConfirmed(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"confirmed_at": at.UTC(), "updated_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) FindActorByUserID(ctx context.Context, userID string) (*domain.Actor, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return r.findActor(ctx, bson.M{"user_id": oid})
}

func (r *AccountRepository) FindActorByID(ctx context.Context, id string) (*domain.Actor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrActorNotFound
	}
	return r.findActor(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findActor(ctx context.Context, filter bson.M) (*domain.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoActor
	if err := r.actors.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrActorNotFound
		}
		return nil, fmt.Errorf("find actor: %w", err)
	}
	return fromMongoActor(&ma), nil
}

// EnsureIndexes creates the unique indexes that arbitrate concurrent signups.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usersNameIndex)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usersEmailIndex)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = r.actors.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(actorsUserIndex),
	})
	if err != nil {
		return fmt.Errorf("actors indexes: %w", err)
	}
	return nil
}

func toMongoUser(u *domain.User) *mongoUser {
	return &mongoUser{
		Name:         u.Name,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
		Active:       u.Active,
		Locale:       u.Locale,
		ConfirmedAt:  u.ConfirmedAt,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func fromMongoUser(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		Email:        mu.Email,
		DisplayName:  mu.DisplayName,
		PasswordHash: mu.PasswordHash,
		Roles:        mu.Roles,
		Active:       mu.Active,
		Locale:       mu.Locale,
		ConfirmedAt:  mu.ConfirmedAt,
		CreatedAt:    mu.CreatedAt,
		UpdatedAt:    mu.UpdatedAt,
	}
}

func toMongoActor(a *domain.Actor) (*mongoActor, error) {
	ma := &mongoActor{
		PreferredUsername: a.PreferredUsername,
		Name:              a.Name,
		Summary:           a.Summary,
		URL:               a.URL,
		InboxURL:          a.InboxURL,
		OutboxURL:         a.OutboxURL,
		FollowersURL:      a.FollowersURL,
		FollowingURL:      a.FollowingURL,
		AvatarURL:         a.AvatarURL,
		HeaderURL:         a.HeaderURL,
		Locked:            a.Locked,
		Bot:               a.Bot,
		Fields:            a.Fields,
		Emojis:            a.Emojis,
		CreatedAt:         a.CreatedAt.UTC(),
	}
	if a.MovedToID != "" {
		oid, err := primitive.ObjectIDFromHex(a.MovedToID)
		if err != nil {
			return nil, fmt.Errorf("moved_to_id: %w", err)
		}
		ma.MovedToID = &oid
	}
	return ma, nil
}

func fromMongoActor(ma *mongoActor) *domain.Actor {
	a := &domain.Actor{
		ID:                ma.ID.Hex(),
		UserID:            ma.UserID.Hex(),
		PreferredUsername: ma.PreferredUsername,
		Name:              ma.Name,
		Summary:           ma.Summary,
		URL:               ma.URL,
		InboxURL:          ma.InboxURL,
		OutboxURL:         ma.OutboxURL,
		FollowersURL:      ma.FollowersURL,
		FollowingURL:      ma.FollowingURL,
		AvatarURL:         ma.AvatarURL,
		HeaderURL:         ma.HeaderURL,
		Locked:            ma.Locked,
		Bot:               ma.Bot,
		Fields:            ma.Fields,
		Emojis:            ma.Emojis,
		CreatedAt:         ma.CreatedAt,
	}
	if ma.MovedToID != nil {
		a.MovedToID = ma.MovedToID.Hex()
	}
	return a
}
