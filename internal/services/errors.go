// Package services contains the business logic of the chat backend: the user
// directory (credential storage and presence status) and the presence event
// log. Callers should match the sentinel errors below with errors.Is.
package services

import "errors"

var (
	// Registration validation errors.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already registered")

	// Authentication errors. Deliberately does not distinguish "no such
	// user" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Lookup errors.
	ErrUserNotFound = errors.New("user not found")
)
