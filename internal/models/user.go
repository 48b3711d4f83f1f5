package models

import (
	"time"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

type User struct {
	ID        int64  `gorm:"primaryKey,autoIncrement"`
	Nickname  string `gorm:"unique"`
	AvatarID  int
	Balance   float64
	CreatedAt time.Time
	Password  string `json:"-"`
}

func CheckIfUserExistsByID(userID int64) (bool, error) {
	var exists bool
	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("id = ?", userID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func CheckIfUserExistsByNickname(nn string) (bool, error) {
	var exists bool

	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("nickname = ?", nn).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetUserByID(userID int64) (*User, error) {
	var user User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}
	return &user, nil
}

func GetUserWithPassword(nickname string) (*User, error) {
	var user User

	err := db.DB.
		Where("nickname = ?", nickname).
		First(&user).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}
