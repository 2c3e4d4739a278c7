package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequestObserver counts finished HTTP requests.
type RequestObserver interface {
	ObserveRequest(route, status string)
}

// Metrics labels requests by matched route, not raw path, to keep
// cardinality bounded.
func Metrics(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}
