// Package repository persists reservations and transaction records in Redis
// and the order audit log in sqlite. Shared sentinel errors let the handler
// layer pick status codes without inspecting backend-specific failures.
package repository

import "errors"

// ErrStorageUnavailable is returned when the underlying store cannot be
// reached or a read/write fails. Handlers translate it into an HTTP 500.
var ErrStorageUnavailable = errors.New("storage unavailable")
