package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

const identityCollection = "identities"

// IdentityRepository persists identities keyed by phone number. The transfer
// index is stored on the identity document itself, mirroring one identity
// record per actor.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

// EnsureIndexes creates the unique phone index. Call once at startup.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create phone index: %w", err)
	}
	return nil
}

type identityDoc struct {
	Phone                 string  `bson:"phone"`
	Role                  string  `bson:"role"`
	CredentialHash        string  `bson:"credential_hash,omitempty"`
	TransferredProduceIDs []int64 `bson:"transferred_produce_ids,omitempty"`
	CreatedAt             int64   `bson:"created_at"`
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := identityDoc{
		Phone:          identity.Phone,
		Role:           string(identity.Role),
		CredentialHash: identity.CredentialHash,
		CreatedAt:      identity.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrIdentityExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	return r.FindByPhone(ctx, identity.Phone)
}

func (r *IdentityRepository) FindByPhone(ctx context.Context, phone string) (*domain.Identity, error) {
	var doc identityDoc
	if err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return docToIdentity(doc), nil
}

// RecordTransfer appends produceID to the identity's transferred-away set.
// $addToSet keeps the operation idempotent.
func (r *IdentityRepository) RecordTransfer(ctx context.Context, phone string, produceID uint64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"phone": phone},
		bson.M{"$addToSet": bson.M{"transferred_produce_ids": int64(produceID)}},
	)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) TransferredProduceIDs(ctx context.Context, phone string) ([]uint64, error) {
	identity, err := r.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return identity.TransferredProduceIDs, nil
}

func (r *IdentityRepository) ReplaceTransferIndex(ctx context.Context, phone string, produceIDs []uint64) error {
	ids := make([]int64, len(produceIDs))
	for i, id := range produceIDs {
		ids[i] = int64(id)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"phone": phone},
		bson.M{"$set": bson.M{"transferred_produce_ids": ids}},
	)
	if err != nil {
		return fmt.Errorf("replace transfer index: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func docToIdentity(doc identityDoc) *domain.Identity {
	ids := make([]uint64, len(doc.TransferredProduceIDs))
	for i, id := range doc.TransferredProduceIDs {
		ids[i] = uint64(id)
	}
	return &domain.Identity{
		Phone:                 doc.Phone,
		Role:                  domain.Role(doc.Role),
		CredentialHash:        doc.CredentialHash,
		TransferredProduceIDs: ids,
		CreatedAt:             unixToTime(doc.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
