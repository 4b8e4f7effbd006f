// Package validation 提供账号字段的格式校验
package validation

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "collab-novel-api/pkg/errors"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 30
	passwordMinLen = 8
)

var validate = validator.New()

// ValidateUsername 长度 3-30，仅允许字母、数字、下划线
func ValidateUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < usernameMinLen || n > usernameMaxLen {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateEmailAddress 仅做语法校验，不检查可投递性
func ValidateEmailAddress(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// ValidatePassword 至少 8 位，包含大写、小写字母和数字
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < passwordMinLen {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ValidateSignup 按 用户名、邮箱、密码 的顺序校验，返回第一个失败字段
func ValidateSignup(username, email, password string) error {
	if !ValidateUsername(username) {
		return apperrors.Validation("username", "Invalid username")
	}
	if !ValidateEmailAddress(email) {
		return apperrors.Validation("email", "Invalid email address")
	}
	if !ValidatePassword(password) {
		return apperrors.Validation("password", "Invalid password")
	}
	return nil
}
