package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

const (
	tokensCollection  = "oauth2_tokens"
	clientsCollection = "oauth2_clients"
)

var (
	_ ports.TokenStore  = (*TokenRepository)(nil)
	_ ports.ClientStore = (*ClientRepository)(nil)
)

// TokenRepository stores issued OAuth2 tokens. Access tokens are unique.
type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(tokensCollection)}
}

type mongoToken struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id,omitempty"`
	ClientID     string             `bson:"client_id"`
	TokenType    string             `bson:"token_type"`
	AccessToken  string             `bson:"access_token"`
	RefreshToken *string            `bson:"refresh_token"`
	Scope        string             `bson:"scope"`
	Revoked      bool               `bson:"revoked"`
	IssuedAt     time.Time          `bson:"issued_at"`
	ExpiresIn    int64              `bson:"expires_in"`
}

func (r *TokenRepository) Insert(ctx context.Context, token *domain.OAuth2Token) (*domain.OAuth2Token, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	mt := mongoToken{
		ID:           primitive.NewObjectID(),
		UserID:       token.UserID,
		ClientID:     token.ClientID,
		TokenType:    token.TokenType,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope,
		Revoked:      token.Revoked,
		IssuedAt:     token.IssuedAt.UTC(),
		ExpiresIn:    token.ExpiresIn,
	}
	if _, err := r.col.InsertOne(ctx, mt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateToken
		}
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*domain.OAuth2Token, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoToken
	if err := r.col.FindOne(ctx, bson.M{"access_token": accessToken}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "access_token", Value: 1}}, Options: options.Index().SetUnique(true).SetName("tokens_access_token_unique")},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("tokens_user_id")},
	})
	if err != nil {
		return fmt.Errorf("tokens indexes: %w", err)
	}
	return nil
}

func (mt *mongoToken) toDomain() *domain.OAuth2Token {
	return &domain.OAuth2Token{
		ID:           mt.ID.Hex(),
		UserID:       mt.UserID,
		ClientID:     mt.ClientID,
		TokenType:    mt.TokenType,
		AccessToken:  mt.AccessToken,
		RefreshToken: mt.RefreshToken,
		Scope:        mt.Scope,
		Revoked:      mt.Revoked,
		IssuedAt:     mt.IssuedAt,
		ExpiresIn:    mt.ExpiresIn,
	}
}

// ClientRepository stores OAuth2 applications. Clients are registered out of
// band; Register exists for provisioning and tests.
type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(clientsCollection)}
}

type mongoClient struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ClientID     string             `bson:"client_id"`
	ClientName   string             `bson:"client_name"`
	RedirectURIs []string           `bson:"redirect_uris,omitempty"`
	Scope        string             `bson:"scope"`
	Website      string             `bson:"website,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (r *ClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.OAuth2Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoClient
	if err := r.col.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &domain.OAuth2Client{
		ID:           mc.ID.Hex(),
		ClientID:     mc.ClientID,
		ClientName:   mc.ClientName,
		RedirectURIs: mc.RedirectURIs,
		Scope:        mc.Scope,
		Website:      mc.Website,
		CreatedAt:    mc.CreatedAt,
	}, nil
}

// Register stores a new client application.
func (r *ClientRepository) Register(ctx context.Context, client *domain.OAuth2Client) (*domain.OAuth2Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	mc := mongoClient{
		ID:           primitive.NewObjectID(),
		ClientID:     client.ClientID,
		ClientName:   client.ClientName,
		RedirectURIs: client.RedirectURIs,
		Scope:        client.Scope,
		Website:      client.Website,
		CreatedAt:    client.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, mc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("client %q already registered", client.ClientID)
		}
		return nil, fmt.Errorf("register client: %w", err)
	}
	out := *client
	out.ID = mc.ID.Hex()
	return &out, nil
}

func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("clients_client_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("clients indexes: %w", err)
	}
	return nil
}
