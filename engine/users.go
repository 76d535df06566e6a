package engine

import (
	"errors"

	"gorm.io/gorm"

	"github.com/choretab/choretab/models"
)

// UserRegistry is the identity-existence collaborator: the engine validates
// assignee and approver ids against it but never manages credentials.
type UserRegistry struct {
	db *gorm.DB
}

// NewUserRegistry creates a registry over db.
func NewUserRegistry(db *gorm.DB) *UserRegistry {
	return &UserRegistry{db: db}
}

// Get loads a user by id.
func (r *UserRegistry) Get(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("load user", err)
	}
	return &user, nil
}

// Exists reports whether a user id is known.
func (r *UserRegistry) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeErr("check user", err)
	}
	return count > 0, nil
}

// InGroup returns all members of a household group, id ascending.
func (r *UserRegistry) InGroup(groupID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("group_id = ?", groupID).Order("id ASC").Find(&users).Error; err != nil {
		return nil, storeErr("list group users", err)
	}
	return users, nil
}
