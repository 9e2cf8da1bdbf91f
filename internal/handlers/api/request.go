package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// bind decodes a JSON body into dst, or copies the named form fields when
// the request is not JSON.
func bind(c fiber.Ctx, dst map[string]*string) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return err
		}
		for key, ptr := range dst {
			if v, ok := body[key].(string); ok {
				*ptr = v
			}
		}
		return nil
	}

	for key, ptr := range dst {
		*ptr = c.FormValue(key)
	}
	return nil
}

// limitParam reads ?limit=, falling back to def and capping at maxLimit.
func limitParam(c fiber.Ctx, def, maxLimit int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
