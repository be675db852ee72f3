package v1

import (
	"github.com/mnuddindev/foodgram/internal/auth"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/internal/shopping"
	"github.com/mnuddindev/foodgram/pkg/logger"
	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

const DefaultPageSize = 6

var (
	DB        *gorm.DB
	Redis     *storage.RedisClient
	Logger    *logger.Logger
	Tokens    *auth.TokenManager
	Media     *recipes.MediaStore
	Shopping  *shopping.Aggregator
	EmailCfg  utils.EmailConfig
	PageSize  = DefaultPageSize
	Validator = utils.NewValidator()
)
