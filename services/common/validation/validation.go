package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit well inside int64 for every store.
	MaxPage = 100000
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	registerOnce    sync.Once
)

// RegisterCustomValidators adds the "username" and "strongpassword" tags to
// gin's validator and reports fields by their json or form names. Safe to call
// more than once.
func RegisterCustomValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
	})
}

// IsStrongPassword requires at least 6 characters with a digit, an upper and a
// lower case letter and one of @$!%*?&.
func IsStrongPassword(p string) bool {
	if len(p) < 6 {
		return false
	}
	var digit, upper, lower, special bool
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return digit && upper && lower && special
}

// BindError converts a gin binding error into a 400 with per-field messages.
func BindError(err error) *apperrors.Error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.BadRequest("Invalid request body")
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldName(fe)] = message(fe)
	}
	return apperrors.Validation("Validation failed", fields)
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "username":
		return "must be 3-30 characters of letters, numbers and underscores"
	case "strongpassword":
		return "must be at least 6 characters and contain a number, an uppercase letter, a lowercase letter and a special character"
	case "uuid", "uuid4":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// ParsePagination reads page and limit query params. Missing values take the
// defaults; limit is capped at MaxPageSize and pages past MaxPage are rejected.
func ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 || page > MaxPage {
		return 0, 0, apperrors.BadRequest("Invalid page number")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil || limit < 1 {
		return 0, 0, apperrors.BadRequest("Invalid page size")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, nil
}

// TotalPages rounds up; zero items yields zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
