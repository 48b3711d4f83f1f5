package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Scanner probe paths that have nothing to do with this API.
var probePaths = []string{
	".env", "php", "mysql", "admin", "cgi-bin", "wp-login.php",
	"wp-admin", "xmlrpc.php", "config.php", "passwd", "shadow", "backup",
	"bin/bash", "bin/sh", "cmd.exe", "shell", "exec", "actuator",
	"manager/html", "web-console", "login.do", "favicon.ico",
}

func BlockBadActorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		for _, path := range probePaths {
			if strings.Contains(requestPath, path) {
				c.JSON(403, gin.H{"error": "Forbidden"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
