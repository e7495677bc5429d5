package remote

import (
	"fmt"

	"github.com/GehirnInc/crypt/apr1_crypt"
)

// HTPasswd returns an .htpasswd line for user with an APR1-MD5 password hash
func HTPasswd(user, password string) (string, error) {
	hash, err := apr1_crypt.New().Generate([]byte(password), nil)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return user + ":" + hash, nil
}
