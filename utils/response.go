package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	services "github.com/phillip/frolic-api/services"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Abort stops the handler chain with a failure envelope.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// Fail maps a service error onto a status code. Internal errors are logged
// and hidden behind a generic message.
func Fail(c *gin.Context, log *zap.SugaredLogger, err error) {
	kind := services.KindOf(err)
	status := StatusFor(kind)
	message := services.MessageOf(err)
	if kind == "" || message == "" {
		if log != nil {
			log.Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		}
		message = "something went wrong"
	}
	Abort(c, status, message)
}

func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindEventClosed:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindPayment:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
