package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/logging"
)

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg, "is_success": false})
}

// respondStoreError maps store sentinels to status codes. Anything else is a
// 500 whose cause is logged but not returned.
func respondStoreError(c *gin.Context, err error, notFoundMsg, forbiddenMsg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, database.ErrForbidden):
		respondError(c, http.StatusForbidden, forbiddenMsg)
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		respondError(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}

// parseID reads a numeric path parameter, replying 400 when it is not one.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def, lo, hi int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		v = def
	}
	return min(max(v, lo), hi)
}
