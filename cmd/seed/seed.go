package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type categorySeed struct {
	name        string
	description string
}

type productSeed struct {
	category         string
	name             string
	description      string
	shortDescription string
	price            int64
	originalPrice    int64
	sku              string
	stock            int
	weight           string
	dimensions       string
	featured         bool
}

var demoCategories = []categorySeed{
	{"Kitchen", "Premium kitchen essentials and cookware"},
	{"Dining", "Elegant dining sets and tableware"},
	{"Bedding", "Luxurious bedding and home textiles"},
	{"Storage", "Smart storage solutions for organized living"},
	{"Bathroom", "Premium bathroom accessories and essentials"},
}

var demoProducts = []productSeed{
	{"Kitchen", "Premium Chef Knife Set",
		"Professional-grade stainless steel knife set with ergonomic handles. Perfect for all your culinary needs.",
		"Professional-grade stainless steel knife set", 8999, 12999, "KIT-KNIFE-001", 25, "2.5", "35cm x 25cm x 5cm", true},
	{"Kitchen", "Non-Stick Cookware Set",
		"Complete 12-piece non-stick cookware set with heat-resistant handles and even heat distribution.",
		"12-piece non-stick cookware collection", 14999, 18999, "KIT-COOK-002", 15, "8.2", "45cm x 35cm x 20cm", true},
	{"Kitchen", "Bamboo Cutting Board Set",
		"Eco-friendly bamboo cutting boards in three sizes with built-in compartments for easy food prep.",
		"Eco-friendly bamboo cutting board set", 3499, 4499, "KIT-BOARD-003", 40, "1.8", "40cm x 30cm x 3cm", false},
	{"Dining", "Elegant Dinnerware Set",
		"16-piece porcelain dinnerware set with modern design, perfect for everyday dining and special occasions.",
		"16-piece porcelain dinnerware set", 7999, 9999, "DIN-PLATE-001", 20, "4.5", "30cm x 30cm x 25cm", true},
	{"Dining", "Crystal Wine Glass Set",
		"Set of 6 handcrafted crystal wine glasses with elegant stems, perfect for wine enthusiasts.",
		"Handcrafted crystal wine glasses", 5999, 7499, "DIN-GLASS-002", 30, "1.2", "25cm x 20cm x 15cm", false},
	{"Bedding", "Luxury Egyptian Cotton Sheets",
		"1000 thread count Egyptian cotton sheet set with deep pockets and silky smooth finish.",
		"1000TC Egyptian cotton sheet set", 11999, 15999, "BED-SHEET-001", 35, "2.0", "180cm x 200cm x 30cm", true},
	{"Bedding", "Memory Foam Pillow Set",
		"Set of 2 contoured memory foam pillows with cooling gel technology for optimal sleep comfort.",
		"Memory foam pillows with cooling gel", 6999, 8499, "BED-PILLOW-002", 50, "3.2", "50cm x 30cm x 15cm", false},
	{"Storage", "Modular Storage Bins",
		"Set of 6 stackable storage bins with clear fronts and labels for organized home storage.",
		"Stackable storage bins with labels", 3999, 4999, "STO-BIN-001", 45, "4.8", "40cm x 30cm x 25cm", false},
	{"Storage", "Under-Bed Storage Box",
		"Large under-bed storage container with wheels and zippered top, perfect for seasonal items.",
		"Wheeled under-bed storage container", 2499, 3299, "STO-UNDER-002", 60, "2.1", "90cm x 45cm x 15cm", false},
	{"Bathroom", "Luxury Towel Set",
		"6-piece Turkish cotton towel set with exceptional absorbency and softness.",
		"Turkish cotton luxury towel set", 8999, 11999, "BAT-TOWEL-001", 25, "3.5", "70cm x 140cm x 10cm", true},
	{"Bathroom", "Bamboo Bathroom Organizer",
		"Multi-tier bamboo organizer with drawers and compartments for bathroom essentials.",
		"Multi-tier bamboo bathroom organizer", 4999, 6499, "BAT-ORG-002", 18, "5.2", "35cm x 25cm x 80cm", false},
}

// SeedResult counts the rows a run created and skipped
type SeedResult struct {
	CategoriesCreated int
	CategoriesSkipped int
	ProductsCreated   int
	ProductsSkipped   int
}

// Seeder writes the demo catalog and the default superuser
type Seeder struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	users      identity.UserRepository
	logger     *zap.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(categories catalog.CategoryRepository, products catalog.ProductRepository, users identity.UserRepository, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{categories: categories, products: products, users: users, logger: logger}
}

// SeedCatalog creates the demo categories and products. Categories whose slug
// and products whose SKU already exist are left untouched.
func (s *Seeder) SeedCatalog(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	byName := make(map[string]*catalog.Category, len(demoCategories))

	for _, cs := range demoCategories {
		slug := catalog.Slugify(cs.name)
		existing, err := s.categories.FindBySlug(ctx, slug)
		if err == nil {
			byName[cs.name] = existing
			result.CategoriesSkipped++
			s.logger.Info("Category already exists", zap.String("name", cs.name))
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return result, fmt.Errorf("look up category %s: %w", cs.name, err)
		}

		category, err := catalog.NewCategory(cs.name, slug, cs.description)
		if err != nil {
			return result, err
		}
		if err := s.categories.Save(ctx, category); err != nil {
			return result, fmt.Errorf("save category %s: %w", cs.name, err)
		}
		byName[cs.name] = category
		result.CategoriesCreated++
		s.logger.Info("Created category", zap.String("name", cs.name))
	}

	for _, ps := range demoProducts {
		taken, err := s.skuOrSlugTaken(ctx, ps)
		if err != nil {
			return result, err
		}
		if taken {
			result.ProductsSkipped++
			s.logger.Info("Product already exists", zap.String("sku", ps.sku))
			continue
		}

		product, err := buildProduct(byName[ps.category], ps)
		if err != nil {
			return result, fmt.Errorf("build product %s: %w", ps.sku, err)
		}
		if err := s.products.Save(ctx, product); err != nil {
			return result, fmt.Errorf("save product %s: %w", ps.sku, err)
		}
		result.ProductsCreated++
		s.logger.Info("Created product", zap.String("name", ps.name), zap.String("sku", ps.sku))
	}

	return result, nil
}

func (s *Seeder) skuOrSlugTaken(ctx context.Context, ps productSeed) (bool, error) {
	taken, err := s.products.ExistsBySKU(ctx, ps.sku)
	if err != nil || taken {
		return taken, err
	}
	return s.products.ExistsBySlug(ctx, catalog.Slugify(ps.name))
}

func buildProduct(category *catalog.Category, ps productSeed) (*catalog.Product, error) {
	if category == nil {
		return nil, fmt.Errorf("unknown category %q", ps.category)
	}
	product, err := catalog.NewProduct(category.ID, ps.name, ps.sku, decimal.NewFromInt(ps.price))
	if err != nil {
		return nil, err
	}
	if err := product.Update(ps.name, ps.description, ps.shortDescription); err != nil {
		return nil, err
	}
	original := decimal.NewFromInt(ps.originalPrice)
	if err := product.SetPrices(product.Price, &original); err != nil {
		return nil, err
	}
	weight, err := decimal.NewFromString(ps.weight)
	if err != nil {
		return nil, err
	}
	if err := product.SetPhysical(&weight, ps.dimensions); err != nil {
		return nil, err
	}
	if _, _, err := product.SetStock(ps.stock); err != nil {
		return nil, err
	}
	product.SetFeatured(ps.featured)
	return product, nil
}

// SeedSuperuser creates the superuser unless the username is taken. It
// reports whether a user was created.
func (s *Seeder) SeedSuperuser(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || email == "" || password == "" {
		s.logger.Warn("Superuser credentials not fully set, skipping superuser creation")
		return false, nil
	}
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("Superuser already exists, no changes made", zap.String("username", username))
		return false, nil
	}
	user, err := identity.NewSuperuser(username, email, password)
	if err != nil {
		return false, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Created superuser", zap.String("username", username))
	return true, nil
}
