package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository/postgres"
)

var brands = []string{
	"Optimus", "Health Supp", "GNC", "MuscleBlaze",
	"Ultimate Nutrition", "ON", "Labrada", "Dymatize",
}

var flavors = []string{
	"Chocolate", "Vanilla", "Strawberry", "Mango",
	"Banana", "Cookies & Cream", "Unflavored",
}

var categories = []string{
	"Proteins", "Pre-Workout", "Vitamins", "Gainers",
}

func main() {
	count := flag.Int("count", 40, "number of products to generate")
	seed := flag.Int64("seed", 42, "random seed, fixed by default so reruns produce the same catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)
	rng := rand.New(rand.NewSource(*seed))

	created := 0
	for i := 1; i <= *count; i++ {
		product := generateProduct(rng, i)
		if err := repos.Product.Create(context.Background(), product); err != nil {
			logger.Warn("Skipping product", zap.String("slug", product.Slug), zap.Error(err))
			continue
		}
		created++
	}

	fmt.Printf("✅ Seeded %d of %d products\n", created, *count)
}

func generateProduct(rng *rand.Rand, i int) *domain.Product {
	brand := brands[rng.Intn(len(brands))]
	flavor := flavors[rng.Intn(len(flavors))]
	category := categories[rng.Intn(len(categories))]
	weight := 500 + rng.Intn(4)*500

	name := fmt.Sprintf("%s %s Supplement %d (%s, %dg)", brand, category, i, flavor, weight)
	image := fmt.Sprintf("uploads/products/protein%d.jpg", (i%9)+1)

	return &domain.Product{
		Slug:     slugify(name),
		Name:     name,
		Brand:    brand,
		Category: category,
		Price:    float64(999 + rng.Intn(4001)),
		Image:    &image,
		Stock:    50 + rng.Intn(251),
		IsActive: true,
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
