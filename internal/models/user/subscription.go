package models

import (
	"context"
	"errors"
	"time"

	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

// Subscription links a follower (UserID) to a followed author.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_subscription_no_self,user_id <> author_id" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// Subscribe makes userID follow authorID and returns the author.
func Subscribe(ctx context.Context, db *gorm.DB, userID, authorID uint) (*User, error) {
	if userID == authorID {
		return nil, utils.Validation("You cannot subscribe to yourself")
	}

	var author *User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		author, err = GetUserBy(ctx, tx, "id = ?", authorID)
		if err != nil {
			return err
		}

		exists, err := isSubscribed(tx, userID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return utils.AlreadyExists("You are already subscribed to this author")
		}

		if err := tx.Create(&Subscription{UserID: userID, AuthorID: authorID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.AlreadyExists("You are already subscribed to this author")
			}
			return utils.Internal(err, "Failed to subscribe")
		}
		return nil
	})
	if err != nil {
		// A concurrent subscribe can win between the check and the insert.
		if !utils.IsKind(err, utils.KindAlreadyExists) && !utils.IsKind(err, utils.KindNotFoundEntity) {
			if exists, checkErr := isSubscribed(db.WithContext(ctx), userID, authorID); checkErr == nil && exists {
				return nil, utils.AlreadyExists("You are already subscribed to this author")
			}
		}
		return nil, err
	}
	return author, nil
}

// Unsubscribe removes the subscription; an absent pair is an error.
func Unsubscribe(ctx context.Context, db *gorm.DB, userID, authorID uint) error {
	if _, err := GetUserBy(ctx, db, "id = ?", authorID); err != nil {
		return err
	}

	res := db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&Subscription{})
	if res.Error != nil {
		return utils.Internal(res.Error, "Failed to unsubscribe")
	}
	if res.RowsAffected == 0 {
		return utils.NotPresent("You are not subscribed to this author")
	}
	return nil
}

// ListSubscriptions returns the authors userID follows, newest subscription first.
func ListSubscriptions(ctx context.Context, db *gorm.DB, userID uint, p utils.Pagination) ([]User, int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Subscription{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, utils.Internal(err, "Failed to count subscriptions")
	}

	var subs []Subscription
	err := db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, utils.Internal(err, "Failed to get subscriptions")
	}

	authors := make([]User, 0, len(subs))
	for _, s := range subs {
		authors = append(authors, s.Author)
	}
	return authors, count, nil
}

// SubscribedTo returns which of authorIDs userID follows. An anonymous
// caller (userID 0) follows nobody.
func SubscribedTo(ctx context.Context, db *gorm.DB, userID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := db.WithContext(ctx).
		Model(&Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, utils.Internal(err, "Failed to resolve subscriptions")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func isSubscribed(tx *gorm.DB, userID, authorID uint) (bool, error) {
	var count int64
	if err := tx.Model(&Subscription{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
		return false, utils.Internal(err, "Failed to check subscription")
	}
	return count > 0, nil
}
