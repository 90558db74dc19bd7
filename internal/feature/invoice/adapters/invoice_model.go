package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"purchase_backend/internal/feature/invoice/domain/entity"
)

// InvoiceModel is the GORM model for the invoices table.
type InvoiceModel struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	OwnerID            string    `gorm:"index;size:36;not null"`
	ProductName        string    `gorm:"size:255;not null"`
	PurchaseDate       time.Time `gorm:"not null"`
	StoreName          string    `gorm:"size:255;not null"`
	CustomerCareNumber string    `gorm:"size:64;not null"`
	Price              *float64
	Category           string `gorm:"index;size:128;not null"`
	WarrantyPeriod     string `gorm:"size:128"`
	Notes              string
	Documents          datatypes.JSON
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (InvoiceModel) TableName() string {
	return "invoices"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *InvoiceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// documentJSON is the stored shape of a single document entry.
type documentJSON struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// ToEntity converts the GORM model to a domain entity.
// A documents column that is not valid JSON is returned as an error.
func (m *InvoiceModel) ToEntity() (entity.Invoice, error) {
	inv := entity.Invoice{
		ID:                 m.ID,
		OwnerID:            m.OwnerID,
		ProductName:        m.ProductName,
		PurchaseDate:       m.PurchaseDate.UTC(),
		StoreName:          m.StoreName,
		CustomerCareNumber: m.CustomerCareNumber,
		Price:              m.Price,
		Category:           m.Category,
		WarrantyPeriod:     m.WarrantyPeriod,
		Notes:              m.Notes,
		Documents:          []entity.Document{},
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
	if len(m.Documents) > 0 {
		var docs []documentJSON
		if err := json.Unmarshal(m.Documents, &docs); err != nil {
			return entity.Invoice{}, fmt.Errorf("decode documents of invoice %s: %w", m.ID, err)
		}
		for _, d := range docs {
			inv.Documents = append(inv.Documents, entity.Document(d))
		}
	}
	return inv, nil
}

// InvoiceModelFromEntity converts a domain entity to a GORM model.
func InvoiceModelFromEntity(inv *entity.Invoice) (*InvoiceModel, error) {
	docs := make([]documentJSON, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		docs = append(docs, documentJSON(d))
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	return &InvoiceModel{
		ID:                 inv.ID,
		OwnerID:            inv.OwnerID,
		ProductName:        inv.ProductName,
		PurchaseDate:       inv.PurchaseDate,
		StoreName:          inv.StoreName,
		CustomerCareNumber: inv.CustomerCareNumber,
		Price:              inv.Price,
		Category:           inv.Category,
		WarrantyPeriod:     inv.WarrantyPeriod,
		Notes:              inv.Notes,
		Documents:          datatypes.JSON(b),
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}, nil
}
