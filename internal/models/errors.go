package models

import "errors"

// ErrValidation wraps every payload validation failure
var ErrValidation = errors.New("validation failed")
