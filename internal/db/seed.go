package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-settlement/internal/config"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/validators"
)

// superAdminRows builds the head-office branch and the super admin account
// described by cfg. Nothing is written.
func superAdminRows(cfg *config.Config) (*models.Barbershop, *models.User, error) {
	email := validators.NormalizeEmail(cfg.SuperAdmin.Email)
	if email == "" {
		return nil, nil, errors.New("super admin e-mail is empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash super admin password: %w", err)
	}

	name := strings.TrimSpace(cfg.SuperAdmin.Barbershop)
	shop := &models.Barbershop{
		Name: name,
		Slug: slugify(name),
	}

	user := &models.User{
		Name:         strings.TrimSpace(cfg.SuperAdmin.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         string(role.SuperAdmin),
		Active:       true,
	}

	return shop, user, nil
}

func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// SeedSuperAdmin creates the configured super admin once. An existing
// account with the same e-mail is left alone unless it holds another role,
// which is reported as an error.
func SeedSuperAdmin(db *gorm.DB, cfg *config.Config) error {
	if !cfg.SuperAdminEnabled() {
		return nil
	}

	shop, user, err := superAdminRows(cfg)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		if err == nil {
			if existing.Role != string(role.SuperAdmin) {
				return fmt.Errorf("user %s already exists with role %s", user.Email, existing.Role)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Matriz: reaproveita a barbearia se o slug já existe
		err = tx.Where("slug = ?", shop.Slug).First(shop).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Create(shop).Error
		}
		if err != nil {
			return err
		}

		user.BarbershopID = shop.ID
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		log.Printf("[SEED] super admin %s created on barbershop %s", user.Email, shop.Slug)
		return nil
	})
}
