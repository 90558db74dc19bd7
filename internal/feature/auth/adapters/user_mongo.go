package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"purchase_backend/internal/feature/auth/domain/entity"
	"purchase_backend/internal/feature/auth/usecase"
)

// UsersCollection はユーザードキュメントを格納するコレクション名です。
const UsersCollection = "users"

// userDocument はusersコレクションのドキュメント表現です。
type userDocument struct {
	ID           bson.ObjectID   `bson:"_id,omitempty"`
	Email        string          `bson:"email"`
	PasswordHash string          `bson:"password_hash"`
	Name         string          `bson:"name"`
	Profile      profileDocument `bson:"profile"`
	CreatedAt    time.Time       `bson:"created_at"`
}

type profileDocument struct {
	Phone       string            `bson:"phone,omitempty"`
	Address     string            `bson:"address,omitempty"`
	Preferences map[string]string `bson:"preferences,omitempty"`
}

func userDocumentFromEntity(u *entity.User) userDocument {
	return userDocument{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Profile: profileDocument{
			Phone:       u.Profile.Phone,
			Address:     u.Profile.Address,
			Preferences: u.Profile.Preferences,
		},
		CreatedAt: u.CreatedAt,
	}
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Profile: entity.Profile{
			Phone:       d.Profile.Phone,
			Address:     d.Profile.Address,
			Preferences: d.Profile.Preferences,
		},
		CreatedAt: d.CreatedAt,
	}
}

// userMongo はUserRepositoryインターフェースのMongoDB実装です。
type userMongo struct {
	coll *mongo.Collection
}

var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo は指定されたデータベースのusersコレクションを使うuserMongoを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes はメールアドレスの一意インデックスを作成します。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

// Create はユーザードキュメントを挿入し、生成されたIDと作成日時をuに設定します。
// メールアドレスが重複する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if u.CreatedAt.IsZero() {
		// BSONの日時はミリ秒精度
		u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	doc := userDocumentFromEntity(u)
	doc.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID はIDでユーザーを取得します。不正な形式のIDは未検出として扱います。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userMongo) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}
