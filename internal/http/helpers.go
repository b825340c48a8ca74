package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseUintParam reads a positive integer path parameter.
func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
