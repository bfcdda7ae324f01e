package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// normalizer is implemented by request bodies that accept alias keys.
type normalizer interface {
	Normalize()
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// parseID reads the :id path param. Writes a 400 and returns false when it is
// not a positive integer.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return uint(id), true
}

// respondError maps a service error to its status and envelope.
func respondError(c *gin.Context, err error) {
	status := apierror.StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Int("status", status).
			Err(err).
			Msg("request failed")
	}
	c.JSON(status, apierror.FromError(err))
}

// respondList writes a JSON array. An unreachable datastore degrades to an
// empty array with 200.
func respondList[T any](c *gin.Context, data []T, err error) {
	if err != nil {
		if errors.Is(err, apierror.ErrUnavailable) {
			log.Warn().
				Str("request_id", c.GetString(middleware.RequestIDKey)).
				Str("path", c.FullPath()).
				Err(err).
				Msg("datastore unavailable, returning empty list")
			c.JSON(http.StatusOK, []T{})
			return
		}
		respondError(c, err)
		return
	}
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, data)
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
