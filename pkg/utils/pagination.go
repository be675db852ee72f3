package utils

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

// Pagination is a parsed page/limit pair.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the list envelope returned by paginated endpoints.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// ParsePagination reads the page and limit query parameters.
func ParsePagination(c *fiber.Ctx, defaultLimit int) (Pagination, error) {
	p := Pagination{Page: 1, Limit: defaultLimit}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, NewError(fiber.StatusNotFound, "Invalid page", raw)
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, Validation("Invalid limit", raw)
		}
		p.Limit = limit
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p, nil
}

// NewPage wraps results with count and neighbour links. A page past the last
// one is a 404; the first page is always valid, even when empty.
func NewPage(c *fiber.Ctx, p Pagination, count int64, results interface{}) (Page, error) {
	if p.Page > 1 && int64(p.Offset()) >= count {
		return Page{}, EntityNotFound("Invalid page")
	}
	page := Page{Count: count, Results: results}
	if int64(p.Page*p.Limit) < count {
		next := pageURL(c, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		page.Previous = &prev
	}
	return page, nil
}

func pageURL(c *fiber.Ctx, page int) string {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		query = url.Values{}
	}
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u := c.BaseURL() + c.Path()
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
