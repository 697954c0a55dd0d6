package errors

import (
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrDuplicateCNPJ = fmt.Errorf("duplicate cnpj")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrUnauthorized  = fmt.Errorf("unauthorized")
	ErrNetwork       = fmt.Errorf("network failure")
)
