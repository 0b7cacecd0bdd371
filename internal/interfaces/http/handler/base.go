package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
	"github.com/salesdesk/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response vocabulary shared by all handlers
type BaseHandler struct{}

// caller returns the authenticated caller, aborting with 401 when the
// route was wired without the auth middleware
func (h *BaseHandler) caller(c *gin.Context) (identity.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		h.error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return identity.Caller{}, false
	}
	return caller, true
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// File streams a download with the given filename and content type
func (h *BaseHandler) File(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// HandleError converts service errors into HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var rowErrs *csvio.RowErrors
	if errors.As(err, &rowErrs) {
		details := make([]dto.ErrorDetail, len(rowErrs.Errors()))
		for i, re := range rowErrs.Errors() {
			details[i] = dto.ErrorDetail{Row: re.Row, Field: re.Column, Message: re.Message}
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrCodeCSV, rowErrs.Error(), middleware.GetRequestID(c), details))
		return
	}

	var headerErr *csvio.HeaderError
	if errors.As(err, &headerErr) {
		h.error(c, http.StatusBadRequest, dto.ErrCodeCSV, headerErr.Error())
		return
	}

	if isCSVFileError(err) {
		h.error(c, http.StatusBadRequest, dto.ErrCodeCSV, err.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	h.error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

func isCSVFileError(err error) bool {
	return errors.Is(err, csvio.ErrNotCSV) ||
		errors.Is(err, csvio.ErrFileTooLarge) ||
		errors.Is(err, csvio.ErrEmptyFile) ||
		errors.Is(err, csvio.ErrInvalidEncoding) ||
		errors.Is(err, csvio.ErrMissingHeader) ||
		errors.Is(err, csvio.ErrNoDataRows)
}

// parseUUIDParam parses a path parameter as a UUID, aborting with 400
// when the value is malformed
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
