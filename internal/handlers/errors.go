package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/errs"
)

const partialApplyMessage = "your change was only partly saved, please try again"

// ErrorBody is the error envelope
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler renders every error as {"success": false, "error": {...}}
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := describe(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("code", body.Code).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"success": false, "error": body})
		}
		if err != nil {
			log.Error().Err(err).Msg("writing error response")
		}
	}
}

func describe(err error) (int, ErrorBody) {
	if e, ok := errs.As(err); ok {
		kind := e.Kind()
		body := ErrorBody{Code: kind.String(), Message: e.Message(), Field: e.Field()}
		switch kind {
		case errs.KindPartialApply:
			body.Message = partialApplyMessage
		case errs.KindStoreUnavailable:
			body.Message = "service temporarily unavailable, please try again"
		case errs.KindUnknown:
			body.Message = http.StatusText(http.StatusInternalServerError)
		}
		return kind.HTTPStatus(), body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorBody{Code: codeForStatus(he.Code), Message: msg}
	}
	return http.StatusInternalServerError, ErrorBody{
		Code:    errs.KindUnknown.String(),
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return errs.KindUnauthenticated.String()
	case http.StatusForbidden:
		return errs.KindForbidden.String()
	case http.StatusBadRequest:
		return errs.KindInvalidInput.String()
	case http.StatusNotFound:
		return errs.KindNotFound.String()
	case http.StatusTooManyRequests:
		return errs.KindRateLimited.String()
	default:
		return errs.KindUnknown.String()
	}
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.InvalidInput("body", "request body must be valid JSON")
	}
	return nil
}
