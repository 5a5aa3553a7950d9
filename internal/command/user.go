package command

import (
	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/patch"
)

var (
	nameLength      = apierr.MaxLength(100)
	emailLength     = apierr.MaxLength(100)
	bioLength       = apierr.MaxLength(255)
	usernameLength  = apierr.MaxLength(100)
	passwordLength  = apierr.LengthBetween(8, 100)
	telephoneLength = apierr.MaxLength(20)
)

func userTable(optional bool) Table {
	return Table{
		{Key: "name", Kind: KindString, Optional: optional, Length: nameLength},
		{Key: "email", Kind: KindEmail, Optional: optional, Length: emailLength},
		{Key: "bio", Kind: KindString, Optional: true, Nullable: optional, Length: bioLength},
		{Key: "username", Kind: KindString, Optional: optional, Length: usernameLength},
		{Key: "password", Kind: KindString, Optional: optional, Length: passwordLength},
		{Key: "telephone", Kind: KindTelephone, Optional: true, Nullable: optional, Length: telephoneLength},
		{Key: "verified", Kind: KindBool, Optional: optional},
		{Key: "activated", Kind: KindBool, Optional: optional},
		{Key: "gender", Kind: KindGender, Optional: optional},
		{Key: "userRole", Kind: KindUserRole, Optional: optional},
	}
}

var (
	insertUserTable = userTable(false)
	updateUserTable = userTable(true)
)

// InsertUser creates an account.
type InsertUser struct {
	Name      string
	Email     string
	Bio       *string
	Username  string
	Password  string
	Telephone *string
	Verified  bool
	Activated bool
	Gender    domain.Gender
	Role      domain.UserRole
}

// NewInsertUser builds an InsertUser from a decoded body.
func NewInsertUser(body map[string]any) (InsertUser, error) {
	v, err := insertUserTable.Run(body)
	if err != nil {
		return InsertUser{}, err
	}
	return InsertUser{
		Name:      v.String("name").Value(),
		Email:     v.String("email").Value(),
		Bio:       v.String("bio").Ptr(),
		Username:  v.String("username").Value(),
		Password:  v.String("password").Value(),
		Telephone: v.String("telephone").Ptr(),
		Verified:  v.Bool("verified").Value(),
		Activated: v.Bool("activated").Value(),
		Gender:    v.Gender("gender").Value(),
		Role:      v.UserRole("userRole").Value(),
	}, nil
}

// UpdateUser changes the provided fields of an account. Bio and Telephone can be cleared.
type UpdateUser struct {
	Name      *string
	Email     *string
	Bio       patch.Field[string]
	Username  *string
	Password  *string
	Telephone patch.Field[string]
	Verified  *bool
	Activated *bool
	Gender    *domain.Gender
	Role      *domain.UserRole
}

// NewUpdateUser builds an UpdateUser from a decoded body.
func NewUpdateUser(body map[string]any) (UpdateUser, error) {
	v, err := updateUserTable.Run(body)
	if err != nil {
		return UpdateUser{}, err
	}
	return UpdateUser{
		Name:      v.String("name").Ptr(),
		Email:     v.String("email").Ptr(),
		Bio:       v.String("bio"),
		Username:  v.String("username").Ptr(),
		Password:  v.String("password").Ptr(),
		Telephone: v.String("telephone"),
		Verified:  v.Bool("verified").Ptr(),
		Activated: v.Bool("activated").Ptr(),
		Gender:    v.Gender("gender").Ptr(),
		Role:      v.UserRole("userRole").Ptr(),
	}, nil
}

// TouchesAccountStatus reports whether the update changes fields reserved to managers.
func (c UpdateUser) TouchesAccountStatus() bool {
	return c.Verified != nil || c.Activated != nil || c.Role != nil
}
