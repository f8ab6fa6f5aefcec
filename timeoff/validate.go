package timeoff

import (
	"errors"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Field keys used in FieldErrors.
const (
	FieldEmployee   = "employeeId"
	FieldCategory   = "category"
	FieldStartDate  = "startDate"
	FieldEndDate    = "endDate"
	FieldReason     = "reason"
	FieldAttachment = "attachment"
)

const (
	msgEmployeeRequired  = "Employee is required"
	msgEmployeeUnknown   = "Unknown employee"
	msgCategoryRequired  = "Please select leave type"
	msgStartRequired     = "Start date is required"
	msgEndRequired       = "End date is required"
	msgEndBeforeStart    = "End date cannot be before start date"
	msgReasonTooShort    = "Please provide a valid reason (min 5 characters)"
	msgAttachmentType    = "Attachment must be a PDF, PNG or JPG file"
	msgAttachmentTooBig  = "Attachment must be 2 MB or smaller"
	msgAttachmentSize    = "Attachment size cannot be negative"
	msgAttachmentMissing = "Attachment name and type are required"
)

// MaxAttachmentBytes caps supporting documents.
const MaxAttachmentBytes = 2 << 20

var attachmentExtensions = map[string]bool{".pdf": true, ".png": true, ".jpg": true, ".jpeg": true}

// =============================================================================
// VALIDATOR
// =============================================================================

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so FieldErrors keys match the wire format.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("attachext", func(fl validator.FieldLevel) bool {
		return attachmentExtensions[strings.ToLower(filepath.Ext(fl.Field().String()))]
	})
	return v
}

// validateSubmission reports every violated field at once.
func validateSubmission(v *validator.Validate, s Submission) FieldErrors {
	errs := FieldErrors{}

	var verrs validator.ValidationErrors
	if err := v.Struct(s); err != nil {
		if !errors.As(err, &verrs) {
			// InvalidValidationError only happens for non-struct input.
			errs[FieldCategory] = err.Error()
			return errs
		}
	}
	for _, fe := range verrs {
		field := topLevelField(fe.Namespace())
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = messageFor(field, fe)
	}

	if s.StartDate.IsZero() {
		errs[FieldStartDate] = msgStartRequired
	}
	switch {
	case s.EndDate.IsZero():
		errs[FieldEndDate] = msgEndRequired
	case !s.StartDate.IsZero() && s.EndDate.Before(s.StartDate):
		errs[FieldEndDate] = msgEndBeforeStart
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// topLevelField turns "Submission.attachment.size" into "attachment".
func topLevelField(namespace string) string {
	parts := strings.SplitN(namespace, ".", 3)
	if len(parts) < 2 {
		return namespace
	}
	return parts[1]
}

func messageFor(field string, fe validator.FieldError) string {
	switch field {
	case FieldEmployee:
		return msgEmployeeRequired
	case FieldCategory:
		return msgCategoryRequired
	case FieldReason:
		return msgReasonTooShort
	case FieldAttachment:
		switch fe.Tag() {
		case "max":
			return msgAttachmentTooBig
		case "min":
			return msgAttachmentSize
		case "required":
			return msgAttachmentMissing
		}
		return msgAttachmentType
	}
	return fe.Error()
}
