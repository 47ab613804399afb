package handler

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
)

// fieldLabels 请求体字段在错误信息中的名称
var fieldLabels = map[string]string{
	"Name":              "Name",
	"Title":             "Title",
	"Deadline":          "Deadline",
	"ResponsiblePerson": "Responsible person",
	"ProjectID":         "Project ID",
	"StageID":           "Stage ID",
}

var invalidMessages = map[string]string{
	"ProjectID": "Invalid project ID",
	"StageID":   "Invalid stage ID",
}

func init() {
	registerValidators()
}

// registerValidators 在 gin 的校验引擎上注册 notblank，并让零值日期按空值处理
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(model.Date); ok {
			return d.String()
		}
		return nil
	}, model.Date{})
}

// validationError 把第一条字段校验错误转成客户端可读的信息
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid JSON body")
	}

	fe := verrs[0]
	field := fe.StructField()
	switch fe.Tag() {
	case "required", "notblank":
		if label, ok := fieldLabels[field]; ok {
			return apperr.Validation("%s is required", label)
		}
	case "uuid":
		if msg, ok := invalidMessages[field]; ok {
			return apperr.Validation("%s", msg)
		}
	}
	return apperr.Validation("Invalid %s", field)
}
