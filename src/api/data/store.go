package data

import (
	"gorm.io/gorm"

	"github.com/factguard/factguard/src/api/models"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(u *models.User) error {
	return s.db.Create(u).Error
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateVerification(v *models.Verification) error {
	return s.db.Create(v).Error
}

func (s *Store) RecentByUser(userID uint64, limit int) ([]models.Verification, error) {
	var recs []models.Verification
	err := s.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
