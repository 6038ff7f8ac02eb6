package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar el nombre JSON/query del campo, no el del struct.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindBody parsea el JSON y valida los tags; nil si todo es correcto.
func bindBody(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// bindQuery igual que bindBody para parámetros de consulta.
func bindQuery(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.QueryParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"}
	}
	return validateStruct(out)
}

func validateStruct(obj any) *dto.ErrorResponse {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	resp := &dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	for _, fe := range verrs {
		resp.Details = append(resp.Details, dto.ErrorDetail{
			Field:  fieldPath(fe),
			Reason: fieldMessage(fe),
		})
	}
	return resp
}

// fieldPath quita el nombre del struct raíz: "CreateSaleRequest.items[0].product_id" -> "items[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "obligatorio"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("mínimo %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("mínimo %s elementos", fe.Param())
		}
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "oneof":
		return "valores permitidos: " + fe.Param()
	case "len":
		return fmt.Sprintf("debe tener exactamente %s caracteres", fe.Param())
	case "numeric":
		return "solo dígitos"
	case "datetime":
		return "fecha inválida, formato RFC3339"
	default:
		return "inválido (" + fe.Tag() + ")"
	}
}
