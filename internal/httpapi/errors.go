package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-contacts-cache/domain"
)

const codeValidation = "VALIDATION_FAILED"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status and response body.
func statusFor(err error) (int, ErrorResponse) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]string, len(ve))
		for _, fe := range ve {
			details[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
		}
		return http.StatusBadRequest, ErrorResponse{Code: codeValidation, Message: "validation failed", Details: details}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Message: fmt.Sprint(he.Message)}
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, ErrorResponse{Code: domain.TextCode(err), Message: err.Error()}
	case domain.IsConflict(err):
		return http.StatusConflict, ErrorResponse{Code: domain.TextCode(err), Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{Code: domain.TextCode(err), Message: http.StatusText(http.StatusInternalServerError)}
}

func errorHandler(logger log.Interface) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithField("path", c.Request().URL.Path).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithError(err).Warn("write error response")
		}
	}
}
