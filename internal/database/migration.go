package database

import (
	"fmt"

	"github.com/Jacket-69/Necronomics/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Currency{},
		&models.ExchangeRate{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.Debt{},
		&models.Installment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts reference rows (currencies and the default category tree)
// if they are not present yet. Fixed IDs so the UI can reference them.
func Seed(db *gorm.DB) error {
	currencies := []models.Currency{
		{ID: "cur_clp", Code: "CLP", Name: "Peso Chileno", Symbol: "$", DecimalPlaces: 0},
		{ID: "cur_usd", Code: "USD", Name: "US Dollar", Symbol: "US$", DecimalPlaces: 2},
		{ID: "cur_eur", Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2},
	}
	for _, cur := range currencies {
		var count int64
		if err := db.Model(&models.Currency{}).Where("id = ?", cur.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("seed currencies: %w", err)
		}
		if count == 0 {
			if err := db.Create(&cur).Error; err != nil {
				return fmt.Errorf("seed currencies: %w", err)
			}
		}
	}

	icon := func(s string) *string { return &s }
	categories := []models.Category{
		{ID: "cat_sueldo", Name: "Sueldo", Type: models.TypeIncome, Icon: icon("briefcase")},
		{ID: "cat_otros_ingresos", Name: "Otros Ingresos", Type: models.TypeIncome, Icon: icon("plus-circle")},
		{ID: "cat_comida", Name: "Comida", Type: models.TypeExpense, Icon: icon("utensils")},
		{ID: "cat_transporte", Name: "Transporte", Type: models.TypeExpense, Icon: icon("bus")},
		{ID: "cat_hogar", Name: "Hogar", Type: models.TypeExpense, Icon: icon("home")},
		{ID: "cat_deudas", Name: "Deudas", Type: models.TypeExpense, Icon: icon("credit-card")},
		{ID: "cat_otros", Name: "Otros", Type: models.TypeExpense, Icon: icon("tag")},
	}
	for _, cat := range categories {
		var count int64
		if err := db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		if count == 0 {
			if err := db.Create(&cat).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
	}

	return nil
}
