// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import "errors"

// ErrEmptyBatch is returned when a write is attempted with nothing to write.
var ErrEmptyBatch = errors.New("empty batch")
