package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a weak validator from a document id and its last update.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", id.Hex(), updatedAt.UnixNano())))
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// NotModified sets ETag and Last-Modified and reports whether the client's
// copy is current, in which case a 304 has already been written.
func NotModified(c *gin.Context, id primitive.ObjectID, updatedAt time.Time) bool {
	etag := GenerateETag(id, updatedAt)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	c.Header("Last-Modified", updatedAt.UTC().Format(http.TimeFormat))
	return false
}

// Version identifies one member of a listed result set.
type Version struct {
	ID        primitive.ObjectID
	UpdatedAt time.Time
}

// GenerateListETag covers every member of a list together with the query
// that produced it. Adding, removing or editing any member changes it.
func GenerateListETag(query string, items []Version) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%d", query, len(items))
	for _, it := range items {
		fmt.Fprintf(h, "|%s:%d", it.ID.Hex(), it.UpdatedAt.UnixNano())
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// NotModifiedList is NotModified for a whole result set.
func NotModifiedList(c *gin.Context, query string, items []Version) bool {
	etag := GenerateListETag(query, items)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	var latest time.Time
	for _, it := range items {
		if it.UpdatedAt.After(latest) {
			latest = it.UpdatedAt
		}
	}
	if !latest.IsZero() {
		c.Header("Last-Modified", latest.UTC().Format(http.TimeFormat))
	}
	return false
}
