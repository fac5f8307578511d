package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/NilsonPMMC/sgfs/internal/apierror"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

	// Report fields by their JSON names so 422 bodies match service errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails:
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[campo(fe)] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// campo drops the struct name from the validator namespace:
// "KitRequest.componentes[0].item_id" -> "componentes[0].item_id".
func campo(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// parseID reads the :id path param, writing 400 when it is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// responderError maps service errors onto the API envelopes. Anything it
// does not recognize is attached to the context for middleware.ErrorHandler.
func responderError(c *gin.Context, err error) {
	var (
		ve  *service.ValidationError
		ise *service.InsufficientStockError
		ce  *service.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Fields))
	case errors.As(err, &ise):
		faltantes := make([]apierror.Faltante, 0, len(ise.Faltantes))
		for _, f := range ise.Faltantes {
			faltantes = append(faltantes, apierror.Faltante{
				ItemID:     f.ItemID.String(),
				Nombre:     f.Nombre,
				Disponible: f.Disponible,
				Solicitado: f.Solicitado,
				Faltante:   f.Faltante,
			})
		}
		c.JSON(http.StatusConflict, apierror.NewStock(ise.Error(), faltantes))
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, apierror.New(ce.Msg))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
