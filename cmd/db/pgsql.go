package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

var DB *gorm.DB

// Init opens the shared gorm handle. Called once from main before any
// model helper touches DB.
func Init(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return logger.WrapError(err, "unable to open postgres connection")
	}
	return nil
}
