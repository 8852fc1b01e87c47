// Package main implements a seed command that populates the inventory API
// with demo data: two brands, an admin plus one manager per brand, categories,
// products, and a QR code for every product. Users are written through the
// repository layer (there is no user management endpoint); everything else
// goes through the service layer so the usual slug resolution and scope rules
// apply. The command is safe to re-run: existing rows are detected and reused.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/config"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/event"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/imageproc"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository/postgres"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage/disk"
	"github.com/mresitgokce1/inventory-multi-brand-api/migrations"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/database"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/logger"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/slug"
)

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type brandDef struct {
	name string
	id   string // populated after insert
}

type userDef struct {
	email     string
	password  string
	role      domain.Role
	brandName string // empty for admins
}

type categoryDef struct {
	brandName string
	name      string
	id        string // populated after insert
}

type productDef struct {
	brandName    string
	categoryName string
	name         string
	sku          string
	description  string
	price        string
	stock        int
}

var brands = []brandDef{
	{name: "Acme Tools"},
	{name: "Borealis Outdoors"},
}

var users = []userDef{
	{email: "admin@inventory.test", password: "SecurePass123", role: domain.RoleAdmin},
	{email: "acme@inventory.test", password: "SecurePass123", role: domain.RoleBrandManager, brandName: "Acme Tools"},
	{email: "borealis@inventory.test", password: "SecurePass123", role: domain.RoleBrandManager, brandName: "Borealis Outdoors"},
}

var categories = []categoryDef{
	{brandName: "Acme Tools", name: "Power Tools"},
	{brandName: "Acme Tools", name: "Hand Tools"},
	{brandName: "Acme Tools", name: "Accessories"},
	{brandName: "Borealis Outdoors", name: "Tents & Shelters"},
	{brandName: "Borealis Outdoors", name: "Backpacks"},
	{brandName: "Borealis Outdoors", name: "Camp Kitchen"},
}

var products = []productDef{
	// Acme Tools
	{"Acme Tools", "Power Tools", "Cordless Drill 18V", "DRL-018", "Compact 18V cordless drill with two-speed gearbox, brushless motor, and a spare battery.", "149.90", 25},
	{"Acme Tools", "Power Tools", "Impact Driver", "IMP-020", "High-torque impact driver with one-handed bit loading and a belt hook.", "129.00", 40},
	{"Acme Tools", "Power Tools", "Angle Grinder 115mm", "GRN-115", "115mm angle grinder with tool-free guard adjustment and restart protection.", "89.50", 15},
	{"Acme Tools", "Hand Tools", "Claw Hammer 16oz", "HAM-016", "Forged steel claw hammer with anti-vibration grip and magnetic nail starter.", "19.90", 120},
	{"Acme Tools", "Hand Tools", "Screwdriver Set 12pc", "SCR-012", "12-piece chrome vanadium screwdriver set with magnetic tips and storage rack.", "34.50", 60},
	{"Acme Tools", "Accessories", "Safety Glasses", "ACC-001", "Scratch-resistant polycarbonate safety glasses with anti-fog coating.", "9.90", 300},
	// Borealis Outdoors
	{"Borealis Outdoors", "Tents & Shelters", "Ridge Tent 4P", "TNT-400", "Four-person ridge tent with sealed seams, full-coverage rainfly, and color-coded poles.", "299.00", 12},
	{"Borealis Outdoors", "Tents & Shelters", "Ultralight Tarp", "TRP-100", "370g silnylon tarp with twelve reinforced tie-out points and guyline kit.", "79.90", 30},
	{"Borealis Outdoors", "Backpacks", "Trail Backpack 50L", "BCK-050", "50 liter trekking pack with adjustable torso length, rain cover, and bottom access.", "159.00", 18},
	{"Borealis Outdoors", "Backpacks", "Daypack 20L", "BCK-020", "Packable 20 liter daypack with hydration sleeve and stretch side pockets.", "64.90", 45},
	{"Borealis Outdoors", "Camp Kitchen", "Camp Stove Duo", "STV-200", "Two-burner camp stove with piezo ignition and foldable wind panels.", "119.00", 22},
	{"Borealis Outdoors", "Camp Kitchen", "Titanium Cookset", "CKS-300", "Nesting titanium pot and pan set for two, with foldable handles and mesh bag.", "94.50", 17},
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	// Services log through slog; keep them quiet so the seed output stays
	// readable.
	svcLogger := logger.New("seed", "warn", cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ---------------------------------------------------------------
	// 1. Connect and migrate
	// ---------------------------------------------------------------
	log.Println("Connecting to database...")
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, svcLogger); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Println("Connected, schema is up to date.")

	// ---------------------------------------------------------------
	// 2. Wire repositories and services
	// ---------------------------------------------------------------
	userRepo := postgres.NewUserRepository(pool)
	brandRepo := postgres.NewBrandRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	qrRepo := postgres.NewQRCodeRepository(pool)

	store, err := disk.New(cfg.MediaRoot, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("init media storage: %v", err)
	}
	normalizer := imageproc.NewNormalizer(cfg.ImageMaxWidth, cfg.ImageSmallWidth, cfg.ImageQuality)
	pipeline := imageproc.NewPipeline(normalizer, store, productRepo, svcLogger)

	// No Kafka here: seeding should not flood the event topics.
	events := event.NewProducer(nil, svcLogger)

	brandService := service.NewBrandService(brandRepo, events, svcLogger)
	categoryService := service.NewCategoryService(categoryRepo, brandRepo, events, svcLogger)
	productService := service.NewProductService(productRepo, categoryRepo, brandRepo, pipeline, events, svcLogger)
	qrService := service.NewQRCodeService(qrRepo, productRepo, brandRepo, categoryRepo, cfg.QRBaseURL, svcLogger)

	// The services trust the actor from the JWT middleware; here we act as
	// the admin we are about to insert.
	admin := domain.Actor{
		UserID: uuid.New().String(),
		Email:  users[0].email,
		Role:   domain.RoleAdmin,
	}

	// ---------------------------------------------------------------
	// 3. Seed brands
	// ---------------------------------------------------------------
	log.Println("Seeding brands...")
	for i := range brands {
		created, err := brandService.CreateBrand(ctx, admin, &domain.CreateBrandInput{Name: brands[i].name})
		if err != nil {
			existing, lookupErr := brandRepo.GetBySlug(ctx, slug.Generate(brands[i].name))
			if lookupErr != nil {
				log.Fatalf("brand %q: create failed (%v) and lookup failed (%v)", brands[i].name, err, lookupErr)
			}
			brands[i].id = existing.ID
			log.Printf("  Brand: %s already exists (id=%s)", brands[i].name, existing.ID)
			continue
		}
		brands[i].id = created.ID
		log.Printf("  Brand: %s (id=%s)", created.Name, created.ID)
	}

	brandByName := make(map[string]string)
	for _, b := range brands {
		brandByName[b.name] = b.id
	}

	// ---------------------------------------------------------------
	// 4. Seed users
	// ---------------------------------------------------------------
	log.Println("Seeding users...")
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.email, err)
		}

		var brandID *string
		if u.brandName != "" {
			id, ok := brandByName[u.brandName]
			if !ok {
				log.Fatalf("user %s references unknown brand %q", u.email, u.brandName)
			}
			brandID = &id
		}

		now := time.Now().UTC()
		rec := &domain.User{
			ID:           uuid.New().String(),
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			BrandID:      brandID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if u.role == domain.RoleAdmin {
			rec.ID = admin.UserID
		}

		if err := userRepo.Create(ctx, rec); err != nil {
			existing, lookupErr := userRepo.GetByEmail(ctx, u.email)
			if lookupErr != nil {
				log.Fatalf("user %s: create failed (%v) and lookup failed (%v)", u.email, err, lookupErr)
			}
			log.Printf("  User: %s already exists (id=%s)", u.email, existing.ID)
			continue
		}
		log.Printf("  User: %s role=%s (id=%s)", rec.Email, rec.Role, rec.ID)
	}

	// ---------------------------------------------------------------
	// 5. Seed categories
	// ---------------------------------------------------------------
	log.Println("Seeding categories...")
	for i := range categories {
		brandID := brandByName[categories[i].brandName]
		created, err := categoryService.CreateCategory(ctx, admin, &domain.CreateCategoryInput{
			Name:    categories[i].name,
			BrandID: &brandID,
		})
		if err != nil {
			existing, total, lookupErr := categoryRepo.List(ctx, repository.CategoryFilter{
				BrandID:  &brandID,
				Name:     &categories[i].name,
				Page:     1,
				PageSize: 1,
			})
			if lookupErr != nil || total == 0 {
				log.Fatalf("category %q: create failed (%v) and lookup failed (%v)", categories[i].name, err, lookupErr)
			}
			categories[i].id = existing[0].ID
			log.Printf("  Category: %s / %s already exists (id=%s)", categories[i].brandName, categories[i].name, existing[0].ID)
			continue
		}
		categories[i].id = created.ID
		log.Printf("  Category: %s / %s (id=%s)", categories[i].brandName, created.Name, created.ID)
	}

	categoryByKey := make(map[string]string)
	for _, c := range categories {
		categoryByKey[c.brandName+"/"+c.name] = c.id
	}

	// ---------------------------------------------------------------
	// 6. Seed products
	// ---------------------------------------------------------------
	log.Println("Seeding products...")
	createdProducts := 0
	for _, p := range products {
		brandID := brandByName[p.brandName]
		categoryID := categoryByKey[p.brandName+"/"+p.categoryName]

		created, err := productService.CreateProduct(ctx, admin, &domain.CreateProductInput{
			Name:        p.name,
			SKU:         p.sku,
			Description: p.description,
			BrandID:     &brandID,
			CategoryID:  &categoryID,
			Price:       decimal.RequireFromString(p.price),
			Stock:       p.stock,
		})
		if err != nil {
			log.Printf("  Product: %s / %s: %v (may already exist, continuing)", p.brandName, p.name, err)
			continue
		}
		createdProducts++
		log.Printf("  Product: %s / %s sku=%s (id=%s)", p.brandName, created.Name, created.SKU, created.ID)
	}

	// ---------------------------------------------------------------
	// 7. Generate QR codes for every product
	// ---------------------------------------------------------------
	log.Println("Generating QR codes...")
	qrCount := 0
	for _, b := range brands {
		list, _, err := productRepo.List(ctx, repository.ProductFilter{
			BrandID:  &b.id,
			Page:     1,
			PageSize: 100,
		})
		if err != nil {
			log.Fatalf("list products for %s: %v", b.name, err)
		}
		for _, p := range list {
			img, err := qrService.Generate(ctx, admin, p.ID, service.QRRenderOptions{})
			if err != nil {
				log.Printf("  WARNING: QR for %s: %v", p.Name, err)
				continue
			}
			qrCount++
			log.Printf("  QR: %s code=%s url=%s", p.Name, img.Code, img.URL)
		}
	}

	// ---------------------------------------------------------------
	// 8. Summary
	// ---------------------------------------------------------------
	log.Println("Seed complete.")
	log.Printf("  brands=%d users=%d categories=%d products_created=%d qr_codes=%d",
		len(brands), len(users), len(categories), createdProducts, qrCount)
	log.Printf("  Log in with %s / %s", users[0].email, users[0].password)
}
