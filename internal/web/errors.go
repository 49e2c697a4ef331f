package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsummarizer/internal/database"
	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
)

var errBadRequest = errors.New("bad request")

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if kind, ok := domain.LoadErrorKindOf(err); ok {
		switch kind {
		case domain.LoadInvalidReference:
			return http.StatusBadRequest
		case domain.LoadUnreachable:
			return http.StatusBadGateway
		case domain.LoadUnsupported, domain.LoadMalformed, domain.LoadNoCaptions:
			return http.StatusUnprocessableEntity
		}
	}

	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrUnknownModel):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrServiceFailure):
		return http.StatusBadGateway
	case errors.Is(err, database.ErrNotFound), errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusNotFound
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	return http.StatusInternalServerError
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(c.Request.Context(), "Failed to handle request",
			"error", err,
			"path", c.Request.URL.Path)

		message = "internal error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
