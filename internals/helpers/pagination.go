package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging reads ?page= & ?limit= (alias ?per_page=) and normalizes.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	page := atoiDefault(strings.TrimSpace(c.Query("page", "1")), 1)
	if page < 1 {
		page = 1
	}

	perRaw := strings.TrimSpace(c.Query("limit"))
	if perRaw == "" {
		perRaw = strings.TrimSpace(c.Query("per_page"))
	}
	per := atoiDefault(perRaw, defaultPerPage)
	if per < 1 {
		per = defaultPerPage
	}
	if maxPerPage > 0 && per > maxPerPage {
		per = maxPerPage
	}

	return Paging{
		Page:    page,
		PerPage: per,
		Offset:  (page - 1) * per,
		Limit:   per,
	}
}

type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func BuildMeta(total int64, p Paging) Meta {
	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1 && totalPages > 0,
	}
}

// ListEnvelope is the count/next/previous shape the mailbox endpoints expose.
type ListEnvelope struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// BuildListEnvelope builds page links off the request path, keeping the limit param.
func BuildListEnvelope(c *fiber.Ctx, total int64, p Paging, results interface{}) ListEnvelope {
	env := ListEnvelope{Count: total, Results: results}

	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	if p.Page < totalPages {
		next := pageLink(c.Path(), p.Page+1, p.PerPage)
		env.Next = &next
	}
	if p.Page > 1 {
		prev := pageLink(c.Path(), p.Page-1, p.PerPage)
		env.Previous = &prev
	}
	return env
}

func pageLink(path string, page, limit int) string {
	return fmt.Sprintf("%s?page=%d&limit=%d", path, page, limit)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
