package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/triage-intake-server/internal/domain"
	"github.com/triage-intake-server/internal/middleware"
)

// payloadTooLargeMessage is returned when the body exceeds server.max_body_bytes
const payloadTooLargeMessage = "Request body too large"

// handleTriage accepts one intake form submission.
//
//	200 TriageResponse              pipeline completed (notification may have failed)
//	400 {"error": <validation msg>} bad or missing input
//	413 {"error": ...}              body over the configured limit
//	500 {"error": <generic msg>}    diagnosis or any other internal failure
func (s *Server) handleTriage(c *gin.Context) {
	log := s.logger.WithField("correlation_id", middleware.GetCorrelationID(c))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.WithField("limit", maxBytesErr.Limit).Warn("Rejected oversized triage request")
			c.JSON(http.StatusRequestEntityTooLarge, domain.ErrorResponse{Error: payloadTooLargeMessage})
			return
		}
		log.WithError(err).Warn("Failed to read triage request body")
		s.writeValidationError(c, domain.NewValidationError(domain.ErrCodeFieldsRequired, "", nil))
		return
	}

	// A body that is not a JSON object carries none of the required fields
	var raw domain.RawSubmission
	if err := json.Unmarshal(body, &raw); err != nil {
		log.WithError(err).Debug("Triage request body is not a JSON object")
		s.writeValidationError(c, domain.NewValidationError(domain.ErrCodeFieldsRequired, "", nil))
		return
	}

	response, err := s.submitter.Submit(c.Request.Context(), raw)
	if err != nil {
		if validationErr, ok := domain.IsValidationError(err); ok {
			s.writeValidationError(c, validationErr)
			return
		}

		log.WithError(err).Error("Error processing triage request")
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: domain.GenericFailureMessage})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) writeValidationError(c *gin.Context, err *domain.ValidationError) {
	s.logger.WithFields(logrus.Fields{
		"correlation_id": middleware.GetCorrelationID(c),
		"code":           err.Code,
		"field":          err.Field,
	}).Info("Rejected triage submission")

	c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: err.Message})
}
