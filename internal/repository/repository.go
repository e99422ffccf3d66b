package repository

import "errors"

// ErrNotFound se devuelve cuando la fila pedida no existe.
var ErrNotFound = errors.New("record not found")
