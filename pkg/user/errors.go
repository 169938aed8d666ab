package user

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be resolved by id or email
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that already exists
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidRole is returned when a role is not one of user, admin
	ErrInvalidRole = errors.New("role must be either 'user' or 'admin'")

	// ErrInvalidStatus is returned when a status is not one of Active, Inactive
	ErrInvalidStatus = errors.New("status must be either 'Active' or 'Inactive'")

	// ErrMissingFields is returned when required registration fields are absent
	ErrMissingFields = errors.New("please provide name, email, and password")
)
