package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
)

func paint(name, category, price string, stock int, detail string) models.Product {
	return models.Product{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Detail:   detail,
	}
}

var starterCatalog = []models.Product{
	paint("Latex Flat White 4L", "Latex", "650.00", 24, "Interior/exterior acrylic latex, flat finish"),
	paint("Latex Semi-Gloss White 4L", "Latex", "720.00", 18, "Washable semi-gloss for trims and doors"),
	paint("Quick Dry Enamel Red 1L", "Enamel", "285.00", 30, "For wood and metal"),
	paint("Quick Dry Enamel Black 1L", "Enamel", "285.00", 4, "For wood and metal"),
	paint("Flat Wall Enamel 4L", "Enamel", "780.00", 10, "Primer-sealer for concrete and wood"),
	paint("Red Oxide Primer 1L", "Primer", "240.00", 15, "Metal primer"),
	paint("Masonry Putty 1L", "Primer", "195.00", 3, "Fills hairline cracks on concrete"),
	paint("Paint Thinner 1L", "Solvent", "120.00", 40, ""),
	paint("Lacquer Thinner 1L", "Solvent", "165.00", 2, ""),
	paint("Paint Roller 7in", "Tools", "150.00", 20, "Roller with tray"),
	paint("Paint Brush 2in", "Tools", "55.00", 60, ""),
	paint("Tinting Color Blue 60ml", "Tint", "75.00", 12, "Universal colorant"),
}

// SeedProducts inserts the starter catalog into an empty products table.
func SeedProducts(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	st := store.NewSQL(db)
	for _, p := range starterCatalog {
		if _, err := st.AddProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
