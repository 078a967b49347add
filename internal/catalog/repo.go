package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calebmoran/tunewave-backend/pkg/db/models"
)

// Repository handles product and price persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertProduct(ctx context.Context, product *models.Product) error
	UpsertPrice(ctx context.Context, price *models.Price) error
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	FindPriceByID(ctx context.Context, id string) (*models.Price, error)
	ListActiveWithPrices(ctx context.Context) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertProduct replaces all columns on conflict so redeliveries and
// out-of-order updates both converge on the latest payload.
func (r *repository) UpsertProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(product).Error
}

func (r *repository) UpsertPrice(ctx context.Context, price *models.Price) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(price).Error
}

func (r *repository) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindPriceByID(ctx context.Context, id string) (*models.Price, error) {
	var price models.Price
	if err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

// ListActiveWithPrices returns active products with their active prices,
// ordered by the display index the dashboard stores in product metadata.
func (r *repository) ListActiveWithPrices(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Preload("Prices", "active = ?", true).
		Find(&products).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return displayIndex(products[i].Metadata) < displayIndex(products[j].Metadata)
	})
	for i := range products {
		sort.SliceStable(products[i].Prices, func(a, b int) bool {
			return products[i].Prices[a].UnitAmount < products[i].Prices[b].UnitAmount
		})
	}
	return products, nil
}

func displayIndex(metadata json.RawMessage) int {
	if len(metadata) == 0 {
		return 0
	}
	var fields map[string]string
	if err := json.Unmarshal(metadata, &fields); err != nil {
		return 0
	}
	idx, err := strconv.Atoi(fields["index"])
	if err != nil {
		return 0
	}
	return idx
}
