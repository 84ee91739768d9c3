package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"factuurcheck/pkg/catalog"
	"factuurcheck/pkg/pdftext"
	"factuurcheck/pkg/reconcile"
	"factuurcheck/pkg/runner"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

// Reconciliation engine shared by the handlers, built once at startup.
var (
	priceCatalog *reconcile.Catalog
	catalogPath  string
	runOptions   reconcile.Options
	lineSource   runner.LineSource
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./factuurcheck migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()
	initEngine()

	r := gin.Default()

	setupRoutes(r)

	r.Run(":8081")
}

// initEngine loads the price catalog and reconciliation settings from the
// environment. Without a catalog the scan endpoints respond 503 but auth and
// run history keep working.
func initEngine() {
	runOptions = reconcile.DefaultOptions()
	if v := os.Getenv("TOLERANCE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			runOptions.Tolerance = d
		} else {
			log.Printf("ignoring invalid TOLERANCE %q", v)
		}
	}
	if v := strings.ToLower(os.Getenv("AGGREGATE")); v == "false" || v == "0" || v == "no" {
		runOptions.Aggregate = false
	}
	ocrDisabled := false
	if v := strings.ToLower(os.Getenv("OCR_DISABLED")); v == "true" || v == "1" || v == "yes" {
		ocrDisabled = true
	}
	lineSource = pdftext.NewExtractor(!ocrDisabled)

	catalogPath = os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		log.Printf("CATALOG_PATH not set; scan endpoints disabled")
		return
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Printf("catalog load failed: %v; scan endpoints disabled", err)
		return
	}
	priceCatalog = cat
	log.Printf("catalog loaded: %d codes from %s", cat.Len(), catalogPath)
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
