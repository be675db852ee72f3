package auth

import (
	"github.com/mnuddindev/foodgram/pkg/logger"
	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"gorm.io/gorm"
)

// Options carries what the token middleware needs to resolve a caller.
type Options struct {
	DB      *gorm.DB
	Rclient *storage.RedisClient
	Logger  *logger.Logger
	Tokens  *TokenManager
}
