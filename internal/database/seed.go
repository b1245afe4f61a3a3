package database

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backend/internal/model"
)

// Seed inserts the baseline org hierarchy and, when SEED_ADMIN_EMAIL is set,
// a bootstrap super-admin. Idempotent: a second run inserts nothing.
func Seed(db *gorm.DB) error {
	provinces := []model.Province{
		{ID: "NMA", Name: "North Main", Region: "north", Active: true},
		{ID: "SKA", Name: "South Key", Region: "south", Active: true},
		{ID: "CDE", Name: "Central Delta", Region: "central", Active: true},
	}
	if err := seedMissing(db, &model.Province{}, &provinces); err != nil {
		return err
	}

	branches := []model.Branch{
		{Code: "NMA-01", Name: "North Main HQ", ProvinceID: "NMA", Active: true, WarehouseCode: "WH-NMA1"},
		{Code: "NMA-02", Name: "North Main Depot", ProvinceID: "NMA", Active: true, WarehouseCode: "WH-NMA2"},
		{Code: "SKA-01", Name: "South Key HQ", ProvinceID: "SKA", Active: true, WarehouseCode: "WH-SKA1"},
		{Code: "CDE-01", Name: "Central Delta HQ", ProvinceID: "CDE", Active: true, WarehouseCode: "WH-CDE1"},
	}
	if err := seedMissing(db, &model.Branch{}, &branches); err != nil {
		return err
	}

	departments := []model.Department{
		{Code: "OPS", Name: "Operations", Active: true},
		{Code: "ACC", Name: "Accounting", Active: true},
		{Code: "HR", Name: "Human Resources", Active: true},
		{Code: "IT", Name: "Information Technology", Active: true},
	}
	if err := seedMissing(db, &model.Department{}, &departments); err != nil {
		return err
	}

	return seedBootstrapAdmin(db)
}

// seedMissing inserts rows only while the table is still empty. The insert
// keeps ON CONFLICT DO NOTHING so two instances racing on first boot cannot
// fail each other.
func seedMissing(db *gorm.DB, table interface{}, rows interface{}) error {
	var count int64
	if err := db.Model(table).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}

func seedBootstrapAdmin(db *gorm.DB) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.UserProfile{
		AccountID:         "bootstrap-admin",
		DisplayName:       "Bootstrap Admin",
		Email:             email,
		Password:          string(hash),
		Role:              "super-admin",
		ProvinceID:        "NMA",
		IsProfileComplete: true,
		Active:            true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	entry := model.AuditLog{
		Action:     model.ActionSeedBootstrapAdmin,
		EntityID:   admin.ID.String(),
		EntityName: admin.DisplayName,
		Details:    `{"source":"seed"}`,
	}
	if err := db.Create(&entry).Error; err != nil {
		return err
	}

	log.Println("Seeded bootstrap super-admin", email)
	return nil
}
