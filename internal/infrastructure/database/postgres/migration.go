// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/size"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:  db,
		cfg: cfg,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&size.Size{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand)",
		"CREATE INDEX IF NOT EXISTS idx_products_on_sale ON products(is_on_sale)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
		}
	}
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedSizes(); err != nil {
		return fmt.Errorf("failed to seed sizes: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	email := m.cfg.App.AdminEmail
	if email == "" {
		return nil
	}

	var existing user.User
	if err := m.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(m.cfg.App.AdminPassword), m.cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Name:       "Administrator",
		Email:      email,
		Password:   string(hashedPassword),
		IsAdmin:    true,
		IsVerified: true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s", email)
	return nil
}

func (m *Migration) seedSizes() error {
	sizes := []size.Size{
		{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: "40"},
		{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: "41"},
		{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: "42"},
		{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: "43"},
		{Category: size.SizeCategoryWomen, System: size.SizeSystemEU, Value: "36"},
		{Category: size.SizeCategoryWomen, System: size.SizeSystemEU, Value: "37"},
		{Category: size.SizeCategoryWomen, System: size.SizeSystemEU, Value: "38"},
		{Category: size.SizeCategoryKids, System: size.SizeSystemEU, Value: "30"},
	}

	for _, s := range sizes {
		var existing size.Size
		err := m.db.Where("category = ? AND system = ? AND value = ?",
			s.Category, s.System, s.Value).First(&existing).Error
		if err != nil {
			if err := m.db.Create(&s).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
