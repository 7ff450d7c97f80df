package utils

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

// ParsePagination reads page/limit query params and returns skip and limit
// values suitable for a Mongo Find, clamping limit to maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int64) (skip, limit int64) {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return (page - 1) * limit, limit
}

// ParseSort maps a sort query value to a bson sort document, falling back
// to def for unknown values. allowed maps query values to sort docs.
func ParseSort(val string, def bson.D, allowed map[string]bson.D) bson.D {
	if allowed != nil {
		if d, ok := allowed[val]; ok {
			return d
		}
	}
	return def
}
