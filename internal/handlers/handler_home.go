package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome reports that the API is up.
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "General Ledger and Budget Engine API v1"})
}
