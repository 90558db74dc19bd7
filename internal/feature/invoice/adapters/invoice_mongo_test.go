package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"purchase_backend/internal/feature/invoice/domain/entity"
)

func TestInvoiceDocument_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		OwnerID:            "owner-1",
		ProductName:        "Fridge",
		PurchaseDate:       time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		StoreName:          "Yodobashi",
		CustomerCareNumber: "0120-111-222",
		Price:              price(89800),
		Category:           "Appliances",
		WarrantyPeriod:     "1 year",
		Documents:          []entity.Document{{Type: "image/png", Path: "uploads/owner-1/a.png", Name: "a.png"}},
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	doc := invoiceDocumentFromEntity(inv)
	doc.ID = bson.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	for _, key := range []string{"_id", "owner_id", "product_name", "purchase_date", "store_name", "customer_care_number", "price", "category", "documents", "created_at", "updated_at"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "notes", "empty notes are omitted")

	var decoded invoiceDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	got := decoded.toEntity()

	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.Equal(t, inv.ProductName, got.ProductName)
	assert.True(t, inv.PurchaseDate.Equal(got.PurchaseDate))
	require.NotNil(t, got.Price)
	assert.Equal(t, 89800.0, *got.Price)
	assert.Equal(t, inv.Documents, got.Documents)
}

func TestInvoiceDocument_NilPriceStoredAsNull(t *testing.T) {
	doc := invoiceDocumentFromEntity(&entity.Invoice{OwnerID: "o"})
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Nil(t, fields["price"])

	var decoded invoiceDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.toEntity().Price)
	assert.NotNil(t, decoded.toEntity().Documents)
}

func TestOwnedFilter(t *testing.T) {
	oid := bson.NewObjectID()

	filter, ok := ownedFilter("owner-1", oid.Hex())
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}, {Key: "owner_id", Value: "owner-1"}}, filter)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, ok := ownedFilter("owner-1", bad)
		assert.False(t, ok, bad)
	}
}

func TestListFilterAndSort(t *testing.T) {
	q := entity.ListQuery{SortBy: entity.SortByPrice, SortOrder: entity.SortAsc}
	assert.Equal(t, bson.D{{Key: "owner_id", Value: "o"}}, listFilter("o", q))
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, listSort(q))

	q = entity.ListQuery{Category: "Food", SortBy: entity.SortByPurchaseDate, SortOrder: entity.SortDesc}
	assert.Equal(t, bson.D{{Key: "owner_id", Value: "o"}, {Key: "category", Value: "Food"}}, listFilter("o", q))
	assert.Equal(t, bson.D{{Key: "purchase_date", Value: -1}, {Key: "_id", Value: -1}}, listSort(q))
}

func TestStatsPipeline(t *testing.T) {
	p := statsPipeline("owner-1")
	require.Len(t, p, 3)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.D{{Key: "owner_id", Value: "owner-1"}}, p[0][0].Value)

	group := p[1][0]
	assert.Equal(t, "$group", group.Key)
	body, ok := group.Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.E{Key: "_id", Value: "$category"}, body[0])
	assert.Equal(t, bson.E{Key: "total_value", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$price", 0}}}}}}, body[2])

	assert.Equal(t, "$sort", p[2][0].Key)
}

func TestPatchSet(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	name := "New name"
	set := patchSet(entity.Patch{ProductName: &name, Price: price(5), UpdatedAt: now})
	assert.Equal(t, bson.D{
		{Key: "product_name", Value: name},
		{Key: "price", Value: 5.0},
		{Key: "updated_at", Value: now},
	}, set)
}
