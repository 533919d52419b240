package utils

import "github.com/gin-gonic/gin"

// Success writes the standard response envelope. Extra payload fields are
// merged alongside message and success.
func Success(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"message": message,
		"success": true,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error writes the standard error envelope. Diagnostic detail stays in the
// server logs; clients only see the status and a short message.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"message": message,
		"success": false,
	})
}
