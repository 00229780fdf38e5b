package dto

import (
	"errors"
	"fmt"
	"github.com/dgrijalva/jwt-go"
	"strings"
)

/**
  {
      "login": "ravi",
      "password": "secret",
      "referralCode": "01J9Z3K4X8M2B7Q5R6T1V0W9YA"
  }
*/

type Auth struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode,omitempty"`
}

func (a Auth) IsValid() error {
	var loginErr, passwordErr error

	if strings.TrimSpace(a.Login) == "" {
		loginErr = fmt.Errorf("login is required")
	}

	if strings.TrimSpace(a.Password) == "" {
		passwordErr = fmt.Errorf("password is required")
	}

	return errors.Join(loginErr, passwordErr)
}

// Claims is the bearer token payload: the user id as subject plus the admin flag.
type Claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.StandardClaims
}
