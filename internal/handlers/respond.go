package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/xelth-com/pantrywms/internal/inventory"
	"github.com/xelth-com/pantrywms/internal/middleware"
	"github.com/xelth-com/pantrywms/internal/utils"
	"go.uber.org/zap"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps an inventory error kind to an HTTP status
func statusFor(kind inventory.Kind) int {
	switch kind {
	case inventory.KindInvalidValue:
		return http.StatusBadRequest
	case inventory.KindInvalidAction:
		return http.StatusConflict
	case inventory.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends an inventory error as {code, message, details}.
// Anything that is not an inventory error is reported as internal without
// leaking its text.
func (r *Router) respondError(w http.ResponseWriter, req *http.Request, err error) {
	var invErr *inventory.Error
	if !errors.As(err, &invErr) || invErr.Kind == inventory.KindInternal {
		r.log.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(req.Context())),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, inventory.Error{
			Kind:    inventory.KindInternal,
			Message: "internal error",
		})
		return
	}
	respondJSON(w, statusFor(invErr.Kind), invErr)
}

// newValidator builds the request validator. Field errors are reported by
// their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("box_number", func(fl validator.FieldLevel) bool {
		_, err := utils.NormalizeBoxNumber(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it
func (r *Router) decode(req *http.Request, dst interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return inventory.ErrInvalidValue("invalid JSON payload").Wrap(err)
	}
	if err := r.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return inventory.ErrInvalidValue("invalid payload").Wrap(err)
		}
		out := inventory.ErrInvalidValue("validation failed")
		for _, fe := range verrs {
			out.WithDetail(fe.Field(), fieldMessage(fe))
		}
		return out
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "box_number":
		return "must look like BOX00001"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// idParam parses a positive numeric path variable
func idParam(req *http.Request, name string) (uint, error) {
	raw := mux.Vars(req)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, inventory.ErrInvalidValue("%s %q is not a valid id", name, raw).WithDetail(name, raw)
	}
	return uint(id), nil
}

// uintQuery parses an optional numeric query parameter
func uintQuery(req *http.Request, name string) (uint, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, inventory.ErrInvalidValue("%s %q is not a valid id", name, raw).WithDetail(name, raw)
	}
	return uint(v), nil
}
