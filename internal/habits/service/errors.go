package service

import "errors"

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrHabitNotFound      = errors.New("habit not found")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidRange       = errors.New("start date is after end date")
	ErrInvalidFilename    = errors.New("invalid filename")
	ErrFileTooLarge       = errors.New("file too large")
)
