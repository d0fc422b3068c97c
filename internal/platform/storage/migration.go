package storage

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"quill-server-go/internal/platform/errors"
)

// Migration is a single versioned schema change.
type Migration interface {
	Version() string
	Description() string
	Up(db *gorm.DB) error
}

// MigrationRecord tracks which migrations have been applied.
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return errors.Wrap(errors.KindStorage, "migration.create_table",
			"failed to create migration table", err)
	}

	var appliedVersions []string
	if err := db.Model(&MigrationRecord{}).Pluck("version", &appliedVersions).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "migration.get_applied",
			"failed to get applied migrations", err)
	}
	applied := make(map[string]bool, len(appliedVersions))
	for _, version := range appliedVersions {
		applied[version] = true
	}

	for _, migration := range allMigrations() {
		if applied[migration.Version()] {
			continue
		}

		tx := db.Begin()
		if tx.Error != nil {
			return errors.Wrap(errors.KindStorage, "migration.begin_tx",
				"failed to begin transaction", tx.Error)
		}
		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return errors.Wrap(errors.KindStorage, "migration.up",
				fmt.Sprintf("failed to run migration %s", migration.Version()), err)
		}
		record := &MigrationRecord{
			Version:   migration.Version(),
			Name:      migration.Description(),
			AppliedAt: time.Now(),
		}
		if err := tx.Create(record).Error; err != nil {
			tx.Rollback()
			return errors.Wrap(errors.KindStorage, "migration.record",
				"failed to record migration", err)
		}
		if err := tx.Commit().Error; err != nil {
			return errors.Wrap(errors.KindStorage, "migration.commit",
				"failed to commit migration", err)
		}
	}
	return nil
}

func allMigrations() []Migration {
	return []Migration{
		initialSchema{},
		seedAdminUser{},
	}
}

type initialSchema struct{}

func (initialSchema) Version() string     { return "001" }
func (initialSchema) Description() string { return "initial schema" }

func (initialSchema) Up(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Post{}, &Comment{}, &Subscriber{})
}

// seedAdminUser creates a default administrator account on an empty
// install so the instance is reachable before any registration.
type seedAdminUser struct{}

func (seedAdminUser) Version() string     { return "002" }
func (seedAdminUser) Description() string { return "seed admin user" }

func (seedAdminUser) Up(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", "ADMIN").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &User{
		Email:    "admin@localhost",
		Password: string(hash),
		Name:     "Administrator",
		Role:     "ADMIN",
		Enabled:  true,
	}
	return db.Create(admin).Error
}
