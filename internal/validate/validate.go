package validate

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"teacherdash/internal/model"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	uzPhoneTag  = "uzphone"
	isoDateTag  = "isodate"
	statusTag   = "attendance_status"

	uzPhone = regexp.MustCompile(`^\+998\d{9}$`)
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlank)
	_ = Validate.RegisterValidation(uzPhoneTag, phone)
	_ = Validate.RegisterValidation(isoDateTag, isoDate)
	_ = Validate.RegisterValidation(statusTag, attendanceStatus)

	RegisterCustomTranslation("required", "bu maydon to'ldirilishi shart")
	RegisterCustomTranslation(notBlankTag, "bu maydon bo'sh bo'lishi mumkin emas")
	RegisterCustomTranslation(uzPhoneTag, "telefon raqam +998XXXXXXXXX formatida bo'lishi kerak")
	RegisterCustomTranslation(isoDateTag, "sana YYYY-MM-DD formatida bo'lishi kerak")
	RegisterCustomTranslation(statusTag, "noma'lum davomat holati")
	RegisterCustomTranslation("uuid", "noto'g'ri ID")
}

// RegisterCustomTranslation maps a tag to a fixed message.
func RegisterCustomTranslation(tag, text string) {
	registerFn := func(ut.Translator) error { return nil }
	translateFn := func(ut.Translator, validator.FieldError) string { return text }
	_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateFn)
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func phone(fl validator.FieldLevel) bool {
	return uzPhone.MatchString(fl.Field().String())
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func attendanceStatus(fl validator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}

// Struct validates v; summary becomes the error text when any field fails.
func Struct(v interface{}, summary string) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := New(summary)
	for _, fe := range verrs {
		out.Add(fe.Field(), fe.Translate(Translator))
	}
	return out
}

// Var validates a single value against tag, returning the translated message or "".
func Var(v interface{}, tag string) string {
	err := Validate.Var(v, tag)
	if err == nil {
		return ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Translate(Translator)
	}
	return err.Error()
}
