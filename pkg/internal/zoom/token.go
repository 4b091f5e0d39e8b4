package zoom

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// apiToken signs a fresh short-lived bearer token for one API call.
// The provider expects the API key as issuer, validity is kept at a minute.
func apiToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    viper.GetString("zoom.api_key"),
		Audience:  jwt.ClaimStrings{viper.GetString("zoom.audience")},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(60 * time.Second)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tks, err := token.SignedString([]byte(viper.GetString("zoom.api_secret")))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tks, nil
}
