package application

import (
	"errors"

	"github.com/RaikyD/einlagen-orders-service/internal/repository"
)

var (
	ErrCustomerIDRequired = errors.New("customer id is required")
	ErrEmployeeRequired   = errors.New("employee is required")
	ErrSessionNotFound    = errors.New("session not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrUnknownField       = errors.New("unknown field")
	ErrOrderAlreadyExists = repository.ErrOrderAlreadyExists
)
