package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/foodgram/pkg/logger"
)

// Response holds a standardized API error response fields.
type Response struct {
	Success bool         `json:"status"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *CustomError `json:"error,omitempty"`
}

// ResponseBuilder builds a response with a fluent interface.
type ResponseBuilder struct {
	Ctx     context.Context
	C       *fiber.Ctx
	Status  int
	Success bool
	Message string
	Data    interface{}
	Raw     bool
	Err     *CustomError
}

// Success starts a success response. By default the data is written as the
// whole body, which keeps list and detail payloads flat for API clients.
func Success(c *fiber.Ctx) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:     c.UserContext(),
		C:       c,
		Status:  fiber.StatusOK,
		Success: true,
		Raw:     true,
	}
}

// Error starts an error response using CustomError.
func Error(c *fiber.Ctx, err *CustomError) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:     c.UserContext(),
		C:       c,
		Status:  err.Code,
		Success: false,
		Message: err.Message,
		Err:     err,
	}
}

// WithStatus overrides the HTTP status.
func (b *ResponseBuilder) WithStatus(status int) *ResponseBuilder {
	b.Status = status
	return b
}

// WithMessage adds a custom message to the response and switches to the
// enveloped form.
func (b *ResponseBuilder) WithMessage(msg string) *ResponseBuilder {
	b.Message = msg
	b.Raw = false
	return b
}

// WithData adds data to the response.
func (b *ResponseBuilder) WithData(data interface{}) *ResponseBuilder {
	b.Data = data
	return b
}

// Send sends the response and logs it.
func (b *ResponseBuilder) Send() error {
	if log, ok := b.C.Locals("logger").(*logger.Logger); ok && log != nil {
		meta := map[string]string{
			"status":  fmt.Sprintf("%d", b.Status),
			"success": fmt.Sprintf("%t", b.Success),
			"path":    b.C.Path(),
			"method":  b.C.Method(),
			"latency": time.Since(b.C.Context().Time()).String(),
		}
		if b.Success {
			log.Debug(b.Ctx).WithMeta(meta).Logs("Response sent")
		} else if b.Status >= fiber.StatusInternalServerError {
			log.Error(b.Ctx).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s (%s)", b.Err.Error(), b.Err.Details))
		} else {
			log.Warn(b.Ctx).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s", b.Err.Error()))
		}
	}

	if b.Status == fiber.StatusNoContent {
		return b.C.SendStatus(fiber.StatusNoContent)
	}

	if b.Success && b.Raw {
		return b.C.Status(b.Status).JSON(b.Data)
	}

	resp := Response{
		Success: b.Success,
		Message: b.Message,
		Data:    b.Data,
	}
	if b.Err != nil {
		out := *b.Err
		if out.Code >= fiber.StatusInternalServerError {
			out.Details = ""
		}
		resp.Error = &out
	}
	return b.C.Status(b.Status).JSON(resp)
}

// SendError is a convenience function to send an error response directly.
func SendError(c *fiber.Ctx, err error) error {
	var appErr *CustomError
	if !errors.As(err, &appErr) {
		appErr = ErrInternalServerError.WithCause(err)
	}
	return Error(c, appErr).Send()
}

// SendSuccess is a convenience function to send a success response directly.
func SendSuccess(c *fiber.Ctx, data interface{}) error {
	return Success(c).WithData(data).Send()
}

// SendCreated responds 201 with data as the body.
func SendCreated(c *fiber.Ctx, data interface{}) error {
	return Success(c).WithStatus(fiber.StatusCreated).WithData(data).Send()
}

// SendNoContent responds 204.
func SendNoContent(c *fiber.Ctx) error {
	return Success(c).WithStatus(fiber.StatusNoContent).Send()
}
