package models

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name" validate:"required,max=200"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit" validate:"required,max=200"`

	// SearchName is Name lowercased in Go. SQLite's LOWER folds ASCII only.
	SearchName string `gorm:"size:200;not null;default:'';index" json:"-"`
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchIngredients lists ingredients whose name starts with prefix,
// case-insensitively. An empty prefix lists everything.
func SearchIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]Ingredient, error) {
	query := db.WithContext(ctx).Model(&Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where(`search_name LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}

	var out []Ingredient
	if err := query.Order("name").Order("id").Find(&out).Error; err != nil {
		return nil, utils.Internal(err, "Failed to search ingredients")
	}
	return out, nil
}

// GetIngredient fetches an ingredient by id.
func GetIngredient(ctx context.Context, db *gorm.DB, id uint) (*Ingredient, error) {
	var ing Ingredient
	if err := db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.EntityNotFound("Ingredient not found")
		}
		return nil, utils.Internal(err, "Failed to fetch ingredient")
	}
	return &ing, nil
}

// GetOrCreateIngredient returns the (name, unit) row, inserting it when missing.
func GetOrCreateIngredient(ctx context.Context, db *gorm.DB, name, unit string) (*Ingredient, bool, error) {
	ing := Ingredient{Name: strings.TrimSpace(name), MeasurementUnit: strings.TrimSpace(unit)}
	if err := validate.Validate(&ing); err != nil {
		return nil, false, err
	}

	var existing Ingredient
	err := db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", ing.Name, ing.MeasurementUnit).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, utils.Internal(err, "Failed to look up ingredient")
	}

	if err := db.WithContext(ctx).Create(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return GetOrCreateIngredient(ctx, db, name, unit)
		}
		return nil, false, utils.Internal(err, "Failed to save ingredient")
	}
	return &ing, true, nil
}

// LoadIngredients reads "name,unit" rows and get-or-creates each one. Rows
// with a different column count are skipped.
func LoadIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (created, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return created, skipped, nil
		}
		if err != nil {
			return created, skipped, utils.Validation("Malformed ingredients file", err.Error())
		}
		if len(row) != 2 {
			skipped++
			continue
		}

		_, isNew, err := GetOrCreateIngredient(ctx, db, row[0], row[1])
		if err != nil {
			if utils.IsKind(err, utils.KindValidation) {
				skipped++
				continue
			}
			return created, skipped, err
		}
		if isNew {
			created++
		}
	}
}
