package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	cataloguemodel "github.com/jmartinez/canje/modules/catalogue/model"
	cataloguerepo "github.com/jmartinez/canje/modules/catalogue/repository"
	companiesmodel "github.com/jmartinez/canje/modules/companies/model"
	companiesrepo "github.com/jmartinez/canje/modules/companies/repository"
	docmodel "github.com/jmartinez/canje/modules/documents/model"
	docports "github.com/jmartinez/canje/modules/documents/ports"
	docrepository "github.com/jmartinez/canje/modules/documents/repository"
	settingsrepo "github.com/jmartinez/canje/modules/settings/repository"

	"github.com/jmartinez/canje/internal/platform/pdfparse"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ── main ─────────────────────────────────────────────────────────────────────
//
// Seeds the closed source_catalogue (spec §3) with a handful of career-page
// and Greenhouse-backed entries, a starter company blocklist and rate-limit
// rule, and optionally ingests a canonical CV PDF into the default profile
// (spec §4.4 step 1). Idempotent: catalogue entries are unique on
// (company, url), blocklist/rules upsert on company.
func main() {
	_ = godotenv.Load()

	cvPath := flag.String("cv", "", "path to a canonical CV PDF to ingest into the default profile")
	profileTag := flag.String("profile", "default", "profile tag to ingest the CV under")
	flag.Parse()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "canje"),
		envOr("DB_PASSWORD", "canje"),
		envOr("DB_NAME", "canje"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	must(err, "connect")
	defer pool.Close()

	must(pool.Ping(ctx), "ping")
	fmt.Println("connected to database")

	catalogueRepository := cataloguerepo.NewCatalogueRepository(pool)
	blocklistRepository := companiesrepo.NewBlocklistRepository(pool)
	rateLimitRepository := companiesrepo.NewRateLimitRepository(pool)
	settingsRepository := settingsrepo.NewSettingsRepository(pool)

	seedCatalogue(ctx, catalogueRepository)
	seedBlocklist(ctx, blocklistRepository)
	seedRateLimitRules(ctx, rateLimitRepository)
	seedSettings(ctx, settingsRepository)

	if *cvPath != "" {
		seedCanonicalCV(ctx, settingsRepository, *cvPath, *profileTag)
	} else {
		fmt.Println("no -cv path given, skipping canonical CV ingestion")
	}

	fmt.Println("\nseed completed")
}

// ── 1. source catalogue ──────────────────────────────────────────────────────

func seedCatalogue(ctx context.Context, repo *cataloguerepo.CatalogueRepository) {
	entries := []*cataloguemodel.Entry{
		{
			Company:     "TechNova Madrid",
			URL:         "https://technova.example.com/careers",
			AdapterKind: "career_page",
			Selector:    ".job-card",
			ExtraConfig: map[string]any{
				"title_selector":       ".job-title",
				"location_selector":    ".job-location",
				"description_selector": ".job-summary",
			},
			Enabled: true,
			Profile: "default",
		},
		{
			Company:     "CloudScale Iberia",
			URL:         "https://boards.greenhouse.io/cloudscaleiberia",
			AdapterKind: "ats_greenhouse",
			Enabled:     true,
			Profile:     "default",
		},
		{
			Company:     "DataPulse Barcelona",
			URL:         "https://datapulse.example.com/empleo",
			AdapterKind: "career_page",
			Selector:    "[data-job-id]",
			ExtraConfig: map[string]any{
				"title_selector":    "h3",
				"location_selector": ".ubicacion",
			},
			Enabled: true,
			Profile: "default",
		},
	}

	for _, entry := range entries {
		if err := repo.Create(ctx, entry); err != nil {
			if errors.Is(err, cataloguemodel.ErrDuplicateEntry) {
				fmt.Printf("catalogue entry already exists: %s %s\n", entry.Company, entry.URL)
				continue
			}
			must(err, "create catalogue entry "+entry.Company)
		}
		fmt.Printf("created catalogue entry: %s (%s)\n", entry.Company, entry.AdapterKind)
	}
}

// ── 2. company blocklist ─────────────────────────────────────────────────────

func seedBlocklist(ctx context.Context, repo *companiesrepo.BlocklistRepository) {
	entries := []*companiesmodel.BlocklistEntry{
		{Company: "Consultora Fantasma SL", Reason: "reported unpaid trial-period scheme"},
	}
	for _, entry := range entries {
		must(repo.Add(ctx, entry), "add blocklist entry "+entry.Company)
		fmt.Printf("blocklisted company: %s\n", entry.Company)
	}
}

// ── 3. per-company rate-limit overrides ──────────────────────────────────────

func seedRateLimitRules(ctx context.Context, repo *companiesrepo.RateLimitRepository) {
	rules := []*companiesmodel.ApplicationRule{
		{Company: "CloudScale Iberia", MaxPerPeriod: 1, PeriodDays: 30},
	}
	for _, rule := range rules {
		must(repo.Upsert(ctx, rule), "upsert rate-limit rule "+rule.Company)
		fmt.Printf("rate-limit rule: %s capped at %d per %d days\n", rule.Company, rule.MaxPerPeriod, rule.PeriodDays)
	}
}

// ── 4. settings overrides ────────────────────────────────────────────────────

func seedSettings(ctx context.Context, repo *settingsrepo.SettingsRepository) {
	overrides := map[string]string{
		"setup_complete": "true",
	}
	for key, value := range overrides {
		must(repo.Set(ctx, key, value), "set setting "+key)
		fmt.Printf("setting %s = %s\n", key, value)
	}
}

// ── 5. canonical CV ingestion ────────────────────────────────────────────────

func seedCanonicalCV(ctx context.Context, settingsRepository *settingsrepo.SettingsRepository, cvPath, profileTag string) {
	parser := pdfparse.New()
	text, err := parser.ParseText(cvPath)
	must(err, "parse canonical cv pdf")

	extracted := docmodel.ExtractCanonicalCV(text)

	experience := make([]docports.CanonicalExperienceItem, len(extracted.Experience))
	for i, e := range extracted.Experience {
		experience[i] = docports.CanonicalExperienceItem{
			Company:   e.Company,
			Title:     e.Title,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Bullets:   e.Bullets,
		}
	}
	record := &docports.CanonicalCVRecord{
		Name:       extracted.Name,
		Email:      extracted.Email,
		Phone:      extracted.Phone,
		Skills:     extracted.Skills,
		Summary:    extracted.Summary,
		Experience: experience,
	}

	store := docrepository.NewCanonicalCVStore(settingsRepository)
	must(store.Set(ctx, profileTag, record), "store canonical cv")
	fmt.Printf("ingested canonical cv for profile %q: %s, %d skills, %d experience entries\n",
		profileTag, record.Name, len(record.Skills), len(record.Experience))
}
