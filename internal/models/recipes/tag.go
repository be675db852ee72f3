package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gosimple/slug"
	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

const (
	tagsCacheKey = "tags:all"
	tagsCacheTTL = 24 * time.Hour
)

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null;uniqueIndex:idx_tag_name" json:"name" validate:"required,max=200"`
	Color string `gorm:"size:7;not null;uniqueIndex:idx_tag_color" json:"color" validate:"required,hexcolor"`
	Slug  string `gorm:"size:200;not null;uniqueIndex:idx_tag_slug" json:"slug" validate:"required,max=200,slug"`
}

// CreateTag validates and stores a tag. An empty slug is derived from the name.
func CreateTag(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, tag *Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.Color = strings.TrimSpace(tag.Color)
	tag.Slug = strings.TrimSpace(tag.Slug)
	if tag.Slug == "" {
		tag.Slug = slug.Make(tag.Name)
	}
	if err := validate.Validate(tag); err != nil {
		return err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Tag{}).
			Where("name = ? OR color = ? OR slug = ?", tag.Name, tag.Color, tag.Slug).
			Count(&count).Error
		if err != nil {
			return utils.Internal(err, "Failed to check tag")
		}
		if count > 0 {
			return utils.Validation("Tag with this name, color or slug already exists")
		}

		if err := tx.Create(tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.Validation("Tag with this name, color or slug already exists")
			}
			return utils.Internal(err, "Failed to create tag")
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = rclient.Forget(ctx, tagsCacheKey)
	return nil
}

// ListTags returns every tag ordered by id, served from Redis when warm.
func ListTags(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB) ([]Tag, error) {
	var tags []Tag
	if rclient.GetJSON(ctx, tagsCacheKey, &tags) {
		return tags, nil
	}

	if err := db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, utils.Internal(err, "Failed to fetch tags")
	}
	_ = rclient.SetJSON(ctx, tagsCacheKey, tags, tagsCacheTTL)
	return tags, nil
}

// GetTag fetches a tag by id.
func GetTag(ctx context.Context, db *gorm.DB, id uint) (*Tag, error) {
	var tag Tag
	if err := db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.EntityNotFound("Tag not found")
		}
		return nil, utils.Internal(err, "Failed to fetch tag")
	}
	return &tag, nil
}
