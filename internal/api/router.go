package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	v1 "github.com/mnuddindev/foodgram/internal/api/v1"
	"github.com/mnuddindev/foodgram/internal/auth"
	"github.com/mnuddindev/foodgram/internal/config"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/internal/shopping"
	"github.com/mnuddindev/foodgram/pkg/logger"
	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

const bodyLimit = 20 << 20

// NewApp builds the Fiber application with every route mounted.
func NewApp(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger, rclient *storage.RedisClient) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "foodgram",
		BodyLimit:    bodyLimit,
		ErrorHandler: utils.HandleError,
	})
	NewRoutes(ctx, app, cfg, db, log, rclient)
	return app
}

func NewRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *gorm.DB, log *logger.Logger, rclient *storage.RedisClient) {
	middleware := []interface{}{
		logger.SetupLogger(log),
		recover.New(),
		cors.New(
			cors.Config{
				AllowOrigins: cfg.CORSOrigins,
				AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			},
		),
		compress.New(
			compress.Config{
				Level: compress.LevelBestSpeed,
			},
		),
	}
	if cfg.RateLimit > 0 {
		middleware = append(middleware, limiter.New(
			limiter.Config{
				Expiration: 1 * time.Minute,
				Max:        cfg.RateLimit,
				KeyGenerator: func(c *fiber.Ctx) string {
					return c.IP()
				},
				LimitReached: func(c *fiber.Ctx) error {
					return utils.SendError(c, utils.NewError(fiber.StatusTooManyRequests, "Too many requests"))
				},
			},
		))
	}
	app.Use(middleware...)
	if log != nil {
		app.Use(log.Middleware())
	}

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	v1.DB = db
	v1.Redis = rclient
	v1.Logger = log
	v1.Tokens = tokens
	v1.Media = recipes.NewMediaStore(cfg.MediaRoot, cfg.MediaURL)
	v1.Shopping = shopping.NewAggregator(shopping.NewGormSource(db))
	v1.PageSize = cfg.PageSize
	v1.EmailCfg = utils.EmailConfig{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		AppURL:       cfg.AppURL,
		FromEmail:    cfg.MailFrom,
	}

	app.Static(cfg.MediaURL, cfg.MediaRoot)

	api := app.Group("/api", auth.Authenticate(auth.Options{
		DB:      db,
		Rclient: rclient,
		Logger:  log,
		Tokens:  tokens,
	}))
	mountRoutes(api)

	go func() {
		<-ctx.Done()
		rclient.Close(log)
		log.Close()
	}()
}

func mountRoutes(api fiber.Router) {
	authed := auth.RequireAuth()

	token := api.Group("/auth/token")
	token.Post("/login", v1.Login)
	token.Post("/logout", authed, v1.Logout)

	users := api.Group("/users")
	users.Get("/", v1.ListUsers)
	users.Post("/", v1.Register)
	users.Get("/me", authed, v1.Me)
	users.Post("/set_password", authed, v1.SetPassword)
	users.Get("/subscriptions", authed, v1.Subscriptions)
	users.Get("/:id", v1.GetUser)
	users.Post("/:id/subscribe", authed, v1.Subscribe)
	users.Delete("/:id/subscribe", authed, v1.Unsubscribe)

	api.Get("/tags", v1.ListTags)
	api.Get("/tags/:id", v1.GetTag)
	api.Get("/ingredients", v1.ListIngredients)
	api.Get("/ingredients/:id", v1.GetIngredient)

	rs := api.Group("/recipes")
	rs.Get("/", v1.ListRecipes)
	rs.Post("/", authed, v1.CreateRecipe)
	rs.Get("/download_shopping_cart", authed, v1.DownloadShoppingCart)
	rs.Get("/:id", v1.GetRecipe)
	rs.Patch("/:id", authed, v1.UpdateRecipe)
	rs.Delete("/:id", authed, v1.DeleteRecipe)
	rs.Post("/:id/favorite", authed, v1.AddEntry(recipes.KindFavorite))
	rs.Delete("/:id/favorite", authed, v1.RemoveEntry(recipes.KindFavorite))
	rs.Post("/:id/shopping_cart", authed, v1.AddEntry(recipes.KindCart))
	rs.Delete("/:id/shopping_cart", authed, v1.RemoveEntry(recipes.KindCart))
	rs.Get("/:id/download_shopping_cart", authed, v1.DownloadShoppingCart)
}
