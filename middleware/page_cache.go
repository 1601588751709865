package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yatube-api/utils"
)

// cacheKey is the full request path including the query string, so page 2 and
// page 1 of the home listing cache separately.
func cacheKey(ctx *gin.Context) string {
	key := ctx.Request.URL.Path
	if raw := ctx.Request.URL.RawQuery; raw != "" {
		key += "?" + raw
	}
	return key
}

type cachedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cachedWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves the wrapped route from the page cache within the TTL.
// Entries are never invalidated by writes; they expire by TTL or an operator
// Clear, so a post created during the window stays invisible to cached readers.
func CachePage(cache utils.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := cacheKey(ctx)
		if body, ok := cache.Get(key); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
			ctx.Abort()
			return
		}

		writer := &cachedWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = writer
		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK {
			cache.Set(key, writer.body.Bytes(), ttl)
		}
	}
}
