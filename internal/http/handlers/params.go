package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/genasnewdar/lever-stg/internal/http/response"
)

// uuidParam parses a path parameter and writes the 400 itself, so
// handlers can bail with a bare return.
func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(strings.ToLower(c.Query(name)))
	switch raw {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// pageParams reads page/per_page with the same bounds the repos apply,
// so handler-side pagination math matches what the query returned.
func pageParams(c *gin.Context, defaultSize, maxSize int) (int, int) {
	page := intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := intQuery(c, "per_page", defaultSize)
	if pageSize < 1 || pageSize > maxSize {
		pageSize = defaultSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
