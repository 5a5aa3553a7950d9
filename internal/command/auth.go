package command

import "github.com/sumire/hess/internal/apierr"

var loginTable = Table{
	{Key: "login", Kind: KindString, Length: apierr.MaxLength(100)},
	{Key: "password", Kind: KindString, Length: apierr.MaxLength(100)},
}

// Login authenticates by username or email.
type Login struct {
	Login    string
	Password string
}

func NewLogin(body map[string]any) (Login, error) {
	v, err := loginTable.Run(body)
	if err != nil {
		return Login{}, err
	}
	return Login{Login: v.String("login").Value(), Password: v.String("password").Value()}, nil
}

var requestPasswordResetTable = Table{
	{Key: "email", Kind: KindEmail, Length: emailLength},
}

// RequestPasswordReset asks for a reset link to be mailed.
type RequestPasswordReset struct {
	Email string
}

func NewRequestPasswordReset(body map[string]any) (RequestPasswordReset, error) {
	v, err := requestPasswordResetTable.Run(body)
	if err != nil {
		return RequestPasswordReset{}, err
	}
	return RequestPasswordReset{Email: v.String("email").Value()}, nil
}

var resetPasswordTable = Table{
	{Key: "password", Kind: KindString, Length: passwordLength},
}

// ResetPassword sets a new password using a reset token.
type ResetPassword struct {
	Password string
}

func NewResetPassword(body map[string]any) (ResetPassword, error) {
	v, err := resetPasswordTable.Run(body)
	if err != nil {
		return ResetPassword{}, err
	}
	return ResetPassword{Password: v.String("password").Value()}, nil
}
