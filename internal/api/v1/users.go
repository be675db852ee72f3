package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/foodgram/internal/auth"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

// Register creates an account and sends a welcome mail in the background.
func Register(c *fiber.Ctx) error {
	type UserInput struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150,username"`
		FirstName string `json:"first_name" validate:"required,max=150,personname"`
		LastName  string `json:"last_name" validate:"required,max=150,personname"`
		Password  string `json:"password" validate:"required,min=8,max=150"`
	}
	ctx := c.UserContext()

	var ui UserInput
	if err := utils.StrictBodyParser(c, &ui); err != nil {
		Logger.Warn(ctx).WithFields("error", err).Logs("Failed to parse request body")
		return utils.SendError(c, err)
	}
	if err := Validator.Validate(&ui); err != nil {
		Logger.Warn(ctx).WithFields("errors", err).Logs("Validation failed")
		return utils.SendError(c, err)
	}

	hashedPass, err := utils.HashPassword(ui.Password)
	if err != nil {
		Logger.Error(ctx).WithFields("error", err).Logs("Failed to hash password")
		return utils.SendError(c, utils.Internal(err, "Failed to process password"))
	}

	u, err := user.NewUser(ctx, DB, ui.Username, ui.Email, hashedPass,
		user.WithFirstName(ui.FirstName), user.WithLastName(ui.LastName))
	if err != nil {
		Logger.Warn(ctx).WithFields("email", ui.Email, "error", err).Logs("Failed to create user")
		return utils.SendError(c, err)
	}

	go func(email, username string) {
		mailCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := utils.SendWelcomeEmail(mailCtx, EmailCfg, email, username, Logger); err != nil {
			Logger.Warn(mailCtx).WithFields("email", email, "error", err).Logs("Failed to send welcome email")
		}
	}(u.Email, u.Username)

	Logger.Info(ctx).WithFields("user_id", u.ID).Logs(fmt.Sprintf("User registered: %s", u.Username))
	return utils.SendCreated(c, fiber.Map{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}

func ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p, err := utils.ParsePagination(c, PageSize)
	if err != nil {
		return utils.SendError(c, err)
	}

	users, count, err := user.ListUsers(ctx, DB, p)
	if err != nil {
		return utils.SendError(c, err)
	}
	out, err := serializeUsers(ctx, auth.CallerID(c), users)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, err := utils.NewPage(c, p, count, out)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, page)
}

func GetUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	u, err := user.GetUserCached(ctx, Redis, DB, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	out, err := serializeUsers(ctx, auth.CallerID(c), []user.User{*u})
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, out[0])
}

func Me(c *fiber.Ctx) error {
	u, err := user.GetUserCached(c.UserContext(), Redis, DB, auth.CallerID(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, newUserResponse(*u, false))
}

func SetPassword(c *fiber.Ctx) error {
	type PasswordInput struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
	}
	ctx := c.UserContext()

	var pi PasswordInput
	if err := utils.StrictBodyParser(c, &pi); err != nil {
		return utils.SendError(c, err)
	}
	if err := Validator.Validate(&pi); err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	u, err := user.GetUserBy(ctx, DB, "id = ?", callerID)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := utils.ComparePasswords(u.Password, pi.CurrentPassword); err != nil {
		Logger.Warn(ctx).WithFields("user_id", callerID).Logs("Invalid current password")
		return utils.SendError(c, utils.Validation("Invalid password"))
	}

	hashed, err := utils.HashPassword(pi.NewPassword)
	if err != nil {
		return utils.SendError(c, utils.Internal(err, "Failed to process password"))
	}
	if err := user.SetPassword(ctx, Redis, DB, callerID, hashed); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(ctx).WithFields("user_id", callerID).Logs("Password changed")
	return utils.SendNoContent(c)
}

// Login exchanges email and password for an access token.
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=150"`
	}
	ctx := c.UserContext()

	var lr LoginRequest
	if err := utils.StrictBodyParser(c, &lr); err != nil {
		Logger.Warn(ctx).WithFields("error", err).Logs("Failed to parse login request body")
		return utils.SendError(c, err)
	}
	if err := Validator.Validate(&lr); err != nil {
		return utils.SendError(c, err)
	}
	lr.Email = strings.ToLower(strings.TrimSpace(lr.Email))

	invalid := utils.Validation("Unable to log in with provided credentials")
	u, err := user.GetUserBy(ctx, DB, "email = ?", lr.Email)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFoundEntity) {
			Logger.Warn(ctx).WithFields("email", lr.Email).Logs("Login for unknown email")
			return utils.SendError(c, invalid)
		}
		return utils.SendError(c, err)
	}
	if err := utils.ComparePasswords(u.Password, lr.Password); err != nil {
		Logger.Warn(ctx).WithFields("email", lr.Email).Logs("Invalid password provided")
		return utils.SendError(c, invalid)
	}

	token, _, err := Tokens.Generate(u.ID)
	if err != nil {
		Logger.Error(ctx).WithFields("error", err).Logs("Failed to generate access token")
		return utils.SendError(c, utils.Internal(err, "Failed to process login"))
	}

	Logger.Info(ctx).WithFields("user_id", u.ID).Logs("User logged in")
	return utils.SendSuccess(c, fiber.Map{"auth_token": token})
}

// Logout revokes the presented token until it would have expired.
func Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	claims := auth.CallerClaims(c)
	if claims == nil {
		return utils.SendError(c, utils.ErrUnauthorized.WithCause(nil))
	}

	if err := Redis.Blacklist(ctx, claims.ID, claims.Remaining()); err != nil {
		Logger.Warn(ctx).WithFields("user_id", claims.UserID, "error", err).Logs("Token could not be blacklisted")
	}

	Logger.Info(ctx).WithFields("user_id", claims.UserID).Logs("User logged out")
	return utils.SendNoContent(c)
}
