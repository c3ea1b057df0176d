package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/ampvending/amp-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	}
}

// TranslateErrors turns a binding/validation error into field details.
// Anything that is not a validation error (e.g. JSON syntax) becomes a
// single "body" detail.
func TranslateErrors(err error) []response.Detail {
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]response.Detail, 0, len(ve))
		for _, fe := range ve {
			msg := fe.Error()
			if trans != nil {
				msg = fe.Translate(trans)
			}
			details = append(details, response.Detail{Field: fieldPath(fe), Message: msg})
		}
		sort.SliceStable(details, func(i, j int) bool { return details[i].Field < details[j].Field })
		return details
	}

	return []response.Detail{{Field: "body", Message: "malformed request body"}}
}

// fieldPath drops the top-level struct name from the namespace ("Req.items[0].name").
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Bind binds and validates the request body into dst.
// Returns nil on success or the translated field details on failure.
func Bind(c *gin.Context, dst interface{}) []response.Detail {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
