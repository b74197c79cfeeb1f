package serve

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

const basicScheme = "basic "

// DecodeBasicAuth decodes an Authorization header value of the form
// "Basic <base64(user:pass)>". The scheme prefix is optional. Anything that does
// not decode to a username and password separated by a colon yields nil: a bad
// header is treated as no credentials, never as an error.
func DecodeBasicAuth(header string) *Credentials {
	header = strings.TrimSpace(header)
	if len(header) >= len(basicScheme) && strings.EqualFold(header[:len(basicScheme)], basicScheme) {
		header = strings.TrimSpace(header[len(basicScheme):])
	}
	if header == "" {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil
	}

	return &Credentials{Username: username, Password: password}
}

// CheckAuth reports whether supplied satisfies the configured credentials. With
// neither user nor pass configured every request is authorized. Otherwise the
// supplied username and password must both match; an unset configured value only
// matches the empty string.
func CheckAuth(user, pass *string, supplied *Credentials) bool {
	if user == nil && pass == nil {
		return true
	}
	if supplied == nil {
		return false
	}

	userOK := secureEqual(deref(user), supplied.Username)
	passOK := secureEqual(deref(pass), supplied.Password)
	return userOK && passOK
}

// ParseCredentials parses a "user:pass" pair as given on the command line. An
// empty string means authentication is disabled and returns nil.
func ParseCredentials(s string) (*Credentials, error) {
	if s == "" {
		return nil, nil
	}

	username, password, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errors.New(`parse credentials: expected "user:pass"`)
	}
	if username == "" {
		return nil, errors.New("parse credentials: username cannot be empty")
	}

	return &Credentials{Username: username, Password: password}, nil
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
