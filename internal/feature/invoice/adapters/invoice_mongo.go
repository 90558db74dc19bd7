package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"purchase_backend/internal/feature/invoice/domain/entity"
	"purchase_backend/internal/feature/invoice/usecase"
)

// InvoicesCollection は請求書ドキュメントを格納するコレクション名です。
const InvoicesCollection = "invoices"

// invoiceDocument はinvoicesコレクションのドキュメント表現です。
type invoiceDocument struct {
	ID                 bson.ObjectID      `bson:"_id,omitempty"`
	OwnerID            string             `bson:"owner_id"`
	ProductName        string             `bson:"product_name"`
	PurchaseDate       time.Time          `bson:"purchase_date"`
	StoreName          string             `bson:"store_name"`
	CustomerCareNumber string             `bson:"customer_care_number"`
	Price              *float64           `bson:"price"`
	Category           string             `bson:"category"`
	WarrantyPeriod     string             `bson:"warranty_period,omitempty"`
	Notes              string             `bson:"notes,omitempty"`
	Documents          []documentDocument `bson:"documents"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

type documentDocument struct {
	Type string `bson:"type"`
	Path string `bson:"path"`
	Name string `bson:"name"`
}

func invoiceDocumentFromEntity(inv *entity.Invoice) invoiceDocument {
	docs := make([]documentDocument, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		docs = append(docs, documentDocument(d))
	}
	return invoiceDocument{
		OwnerID:            inv.OwnerID,
		ProductName:        inv.ProductName,
		PurchaseDate:       inv.PurchaseDate,
		StoreName:          inv.StoreName,
		CustomerCareNumber: inv.CustomerCareNumber,
		Price:              inv.Price,
		Category:           inv.Category,
		WarrantyPeriod:     inv.WarrantyPeriod,
		Notes:              inv.Notes,
		Documents:          docs,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}

func (d *invoiceDocument) toEntity() entity.Invoice {
	inv := entity.Invoice{
		ID:                 d.ID.Hex(),
		OwnerID:            d.OwnerID,
		ProductName:        d.ProductName,
		PurchaseDate:       d.PurchaseDate.UTC(),
		StoreName:          d.StoreName,
		CustomerCareNumber: d.CustomerCareNumber,
		Price:              d.Price,
		Category:           d.Category,
		WarrantyPeriod:     d.WarrantyPeriod,
		Notes:              d.Notes,
		Documents:          make([]entity.Document, 0, len(d.Documents)),
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
	for _, doc := range d.Documents {
		inv.Documents = append(inv.Documents, entity.Document(doc))
	}
	return inv
}

// invoiceMongo はInvoiceRepositoryインターフェースのMongoDB実装です。
type invoiceMongo struct {
	coll *mongo.Collection
}

var _ usecase.InvoiceRepository = (*invoiceMongo)(nil)

// NewInvoiceMongo は指定されたデータベースのinvoicesコレクションを使うinvoiceMongoを生成します。
func NewInvoiceMongo(db *mongo.Database) *invoiceMongo {
	return &invoiceMongo{coll: db.Collection(InvoicesCollection)}
}

// EnsureIndexes は所有者ごとの一覧と集計に使うインデックスを作成します。
func (r *invoiceMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "purchase_date", Value: -1}},
			Options: options.Index().SetName("owner_purchase_date"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at"),
		},
	})
	return err
}

// Create は請求書ドキュメントを挿入し、生成されたIDをinvに設定します。
func (r *invoiceMongo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv == nil {
		return errors.New("invoice is nil")
	}
	doc := invoiceDocumentFromEntity(inv)
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	inv.ID = doc.ID.Hex()
	return nil
}

// List は所有者の請求書を返します。
func (r *invoiceMongo) List(ctx context.Context, ownerID string, q entity.ListQuery) ([]entity.Invoice, error) {
	if !q.SortBy.Valid() {
		return nil, usecase.ErrInvalidSortField
	}
	cur, err := r.coll.Find(ctx, listFilter(ownerID, q), options.Find().SetSort(listSort(q)))
	if err != nil {
		return nil, err
	}
	var docs []invoiceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toEntities(docs), nil
}

// FindByID は所有者の請求書を取得します。不正な形式のIDは未検出として扱います。
func (r *invoiceMongo) FindByID(ctx context.Context, ownerID, id string) (*entity.Invoice, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, usecase.ErrInvoiceNotFound
	}
	var doc invoiceDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrInvoiceNotFound
		}
		return nil, err
	}
	inv := doc.toEntity()
	return &inv, nil
}

// Update はパッチに含まれるフィールドを$setし、更新後の請求書を返します。
func (r *invoiceMongo) Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Invoice, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, usecase.ErrInvoiceNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc invoiceDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: patchSet(patch)}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrInvoiceNotFound
		}
		return nil, err
	}
	inv := doc.toEntity()
	return &inv, nil
}

// Delete は所有者の請求書を削除します。
func (r *invoiceMongo) Delete(ctx context.Context, ownerID, id string) error {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return usecase.ErrInvoiceNotFound
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrInvoiceNotFound
	}
	return nil
}

type categoryGroup struct {
	Category   string  `bson:"_id"`
	Count      int64   `bson:"count"`
	TotalValue float64 `bson:"total_value"`
}

// Stats はカテゴリ別の集計をaggregateで求め、直近の請求書を作成日時の降順で返します。
func (r *invoiceMongo) Stats(ctx context.Context, ownerID string, recentLimit int) (*entity.Stats, error) {
	cur, err := r.coll.Aggregate(ctx, statsPipeline(ownerID))
	if err != nil {
		return nil, err
	}
	var groups []categoryGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &entity.Stats{
		Categories:     make([]entity.CategoryStat, 0, len(groups)),
		RecentInvoices: []entity.Invoice{},
	}
	for _, g := range groups {
		stats.TotalInvoices += g.Count
		stats.Categories = append(stats.Categories, entity.CategoryStat(g))
	}

	if recentLimit > 0 {
		opts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(recentLimit))
		cur, err := r.coll.Find(ctx, bson.D{{Key: "owner_id", Value: ownerID}}, opts)
		if err != nil {
			return nil, err
		}
		var docs []invoiceDocument
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		stats.RecentInvoices = toEntities(docs)
	}
	return stats, nil
}

func toEntities(docs []invoiceDocument) []entity.Invoice {
	out := make([]entity.Invoice, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out
}

// ownedFilter は_idと所有者で絞り込むフィルタを返します。IDが16進のObjectIDでなければokはfalseです。
func ownedFilter(ownerID, id string) (bson.D, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: ownerID}}, true
}

func listFilter(ownerID string, q entity.ListQuery) bson.D {
	filter := bson.D{{Key: "owner_id", Value: ownerID}}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	return filter
}

// listSort はBSONの比較順に従い、価格未入力（null）を最小値として並べます（昇順で先頭、降順で末尾）。
func listSort(q entity.ListQuery) bson.D {
	dir := 1
	if q.SortOrder == entity.SortDesc {
		dir = -1
	}
	return bson.D{{Key: string(q.SortBy), Value: dir}, {Key: "_id", Value: dir}}
}

// statsPipeline はカテゴリ別の件数と価格合計を求めるパイプラインです。価格未入力は0として扱います。
func statsPipeline(ownerID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$price", 0}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// patchSet はパッチを$setに渡すドキュメントに変換します。
func patchSet(p entity.Patch) bson.D {
	set := bson.D{}
	add := func(key string, v any) { set = append(set, bson.E{Key: key, Value: v}) }
	if p.ProductName != nil {
		add("product_name", *p.ProductName)
	}
	if p.PurchaseDate != nil {
		add("purchase_date", *p.PurchaseDate)
	}
	if p.StoreName != nil {
		add("store_name", *p.StoreName)
	}
	if p.CustomerCareNumber != nil {
		add("customer_care_number", *p.CustomerCareNumber)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.WarrantyPeriod != nil {
		add("warranty_period", *p.WarrantyPeriod)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	add("updated_at", p.UpdatedAt)
	return set
}
