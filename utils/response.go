package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondError writes the standard error envelope
func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// RespondValidationError writes a VALIDATION_ERROR envelope with binding details
func RespondValidationError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// RespondData writes the standard success envelope
func RespondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondPage writes a success envelope with pagination metadata
func RespondPage(c *gin.Context, status int, data interface{}, page Page, total int64) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"page":      page.Number,
			"page_size": page.Size,
			"total":     total,
		},
	})
}
