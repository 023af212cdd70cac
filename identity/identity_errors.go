package identity

import "errors"

var ErrInvalidRegistration = errors.New("invalid registration")

var ErrBadCredentials = errors.New("incorrect email or password")

var ErrDuplicateRegistration = errors.New("email is already registered")

var ErrWeakCredential = errors.New("password should be at least 6 characters")

var ErrProfileNotFound = errors.New("profile not found")

var ErrRoleMismatch = errors.New("account is registered with a different role")

var ErrUnauthenticated = errors.New("invalid or expired session")
