package main

import (
	"log"
	"os"
	"strings"

	"factuurcheck/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Roles first so the users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := db.AutoMigrate(&models.Run{}); err != nil {
			log.Printf("migration warning (runs): %v", err)
		}
		if err := db.AutoMigrate(&models.Result{}); err != nil {
			log.Printf("migration warning (results): %v", err)
		}
		if err := db.AutoMigrate(&models.LineAudit{}); err != nil {
			log.Printf("migration warning (line_audits): %v", err)
		}
		if err := db.AutoMigrate(&models.IngestedFile{}); err != nil {
			log.Printf("migration warning (ingested_files): %v", err)
		}
		if err := ensureResultRunFK(); err != nil {
			log.Printf("warning: ensuring results->runs FK failed: %v", err)
		}
	}
	seedDB()
}

// ensureResultRunFK adds the run_id FK constraint on results if the table
// predates it.
func ensureResultRunFK() error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`).Error; err != nil {
		return err
	}
	type cnt struct{ N int }
	var c cnt
	fkCheckSQL := `SELECT count(*) AS n
		FROM pg_constraint ct
		JOIN pg_class rel ON rel.oid = ct.conrelid
		WHERE rel.relname = 'results' AND ct.contype = 'f'
		  AND pg_get_constraintdef(ct.oid) ILIKE '%run_id%' AND pg_get_constraintdef(ct.oid) ILIKE '%runs%'`
	if err := db.Raw(fkCheckSQL).Scan(&c).Error; err != nil {
		return err
	}
	if c.N == 0 {
		if err := db.Exec(`ALTER TABLE results
			ADD CONSTRAINT fk_results_runs
			FOREIGN KEY (run_id) REFERENCES runs(id)
			ON UPDATE CASCADE ON DELETE CASCADE`).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
	ensureInboxDir()
}

// ensureInboxDir creates the invoice inbox directory.
func ensureInboxDir() {
	base := inboxDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create inbox dir %s: %v", base, err)
	}
}

// inboxDir returns the folder scanned for invoice PDFs (configurable via INBOX_DIR env)
func inboxDir() string {
	if v := os.Getenv("INBOX_DIR"); v != "" {
		return v
	}
	return "invoices"
}
