package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// pathID parses the :id path parameter; on failure it writes the error
// response and reports false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}
