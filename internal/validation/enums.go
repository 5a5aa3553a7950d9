package validation

import (
	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/patch"
)

// Gender accepts MALE or FEMALE.
func Gender(f Field, name string, errs *apierr.ValidationErrors, optional bool) (domain.Gender, bool) {
	return Enum(f, name, domain.Genders, errs, optional)
}

// UserRole accepts USER, MANAGER or ROOT.
func UserRole(f Field, name string, errs *apierr.ValidationErrors, optional bool) (domain.UserRole, bool) {
	return Enum(f, name, domain.UserRoles, errs, optional)
}

// WhoCan accepts one audience token.
func WhoCan(f Field, name string, errs *apierr.ValidationErrors, optional bool) (domain.WhoCan, bool) {
	return Enum(f, name, domain.WhoCanValues, errs, optional)
}

// WhoCanArray accepts a list of audience tokens. A null list clears the restriction when nullable.
func WhoCanArray(f Field, name string, errs *apierr.ValidationErrors, optional, nullable bool) patch.Field[[]domain.WhoCan] {
	return EnumArray(f, name, domain.WhoCanValues, errs, optional, nullable)
}
