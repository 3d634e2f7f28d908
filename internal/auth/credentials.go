package auth

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the flat-file user store: one "username:password" pair per
// line, blank lines and #-comments skipped. Password values starting with
// "$2" are treated as bcrypt hashes; anything else is compared literally.
type Credentials struct {
	users map[string]string
}

func LoadCredentials(path string) (*Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auth: open credentials file: %w", err)
	}
	defer f.Close()

	users := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		username, password, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		users[strings.TrimSpace(username)] = strings.TrimSpace(password)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("auth: read credentials file: %w", err)
	}
	return &Credentials{users: users}, nil
}

// Authenticate reports whether the username/password pair is valid.
func (c *Credentials) Authenticate(username, password string) bool {
	stored, ok := c.users[username]
	if !ok {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// HashPassword produces a bcrypt hash suitable for the credentials file.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
