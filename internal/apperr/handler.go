package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Message, "title": "validation error"})
			return
		}

		switch {
		case errors.Is(err, ErrNotFound):
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		case errors.Is(err, ErrAlreadyRunning):
			_ = c.JSON(http.StatusConflict, map[string]string{"error": "an ingestion run is already in progress"})
			return
		case errors.Is(err, ErrStoreUnavailable):
			_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "document store unavailable"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
