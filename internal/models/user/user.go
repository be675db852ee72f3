package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

const userCacheTTL = 30 * time.Minute

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Email     string `gorm:"size:254;not null;uniqueIndex:idx_user_email" json:"email" validate:"required,email,max=254"`
	Username  string `gorm:"size:150;not null;uniqueIndex:idx_user_username" json:"username" validate:"required,max=150,username"`
	FirstName string `gorm:"size:150;not null" json:"first_name" validate:"required,max=150,personname"`
	LastName  string `gorm:"size:150;not null" json:"last_name" validate:"required,max=150,personname"`
	Password  string `gorm:"size:255;not null" json:"-"`
}

// UserOption configures a User.
type UserOption func(*User)

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// NewUser stores a user whose password is already hashed.
func NewUser(ctx context.Context, db *gorm.DB, username, email, hashedPassword string, opts ...UserOption) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "user registration canceled")
	}

	u := &User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: hashedPassword,
	}
	for _, opt := range opts {
		opt(u)
	}

	if !utils.IsValidUsername(u.Username) {
		return nil, utils.Validation("Invalid username", u.Username)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return utils.Internal(err, "Failed to check email")
		}
		if count > 0 {
			return utils.Validation("A user with that email already exists")
		}
		if err := tx.Model(&User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return utils.Internal(err, "Failed to check username")
		}
		if count > 0 {
			return utils.Validation("A user with that username already exists")
		}

		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.Validation("A user with that email or username already exists")
			}
			return utils.Internal(err, "Failed to create user in database")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}

// GetUserBy retrieves a single user matching condition.
func GetUserBy(ctx context.Context, db *gorm.DB, condition string, args ...interface{}) (*User, error) {
	var u User
	if err := db.WithContext(ctx).Where(condition, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.EntityNotFound("User not found")
		}
		return nil, utils.Internal(err, "Failed to get user")
	}
	return &u, nil
}

// GetUserCached resolves a user id through the Redis cache.
func GetUserCached(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uint) (*User, error) {
	var cached cachedUser
	if rclient.GetJSON(ctx, userCacheKey(id), &cached) && cached.ID == id {
		u := cached.User()
		return &u, nil
	}

	u, err := GetUserBy(ctx, db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	_ = rclient.SetJSON(ctx, userCacheKey(id), newCachedUser(u), userCacheTTL)
	return u, nil
}

// ListUsers returns one page of users ordered by username.
func ListUsers(ctx context.Context, db *gorm.DB, p utils.Pagination) ([]User, int64, error) {
	var (
		users []User
		count int64
	)
	query := db.WithContext(ctx).Model(&User{})
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.Internal(err, "Failed to count users")
	}
	if err := query.Order("username").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, utils.Internal(err, "Failed to get users")
	}
	return users, count, nil
}

// SetPassword replaces the password hash and evicts the cached user.
func SetPassword(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uint, hashedPassword string) error {
	res := db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password", hashedPassword)
	if res.Error != nil {
		return utils.Internal(res.Error, "Failed to update password")
	}
	if res.RowsAffected == 0 {
		return utils.EntityNotFound("User not found")
	}
	_ = rclient.Forget(ctx, userCacheKey(id))
	return nil
}

// cachedUser keeps the password hash out of Redis.
type cachedUser struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newCachedUser(u *User) cachedUser {
	return cachedUser{ID: u.ID, Email: u.Email, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func (c cachedUser) User() User {
	return User{ID: c.ID, Email: c.Email, Username: c.Username, FirstName: c.FirstName, LastName: c.LastName}
}
