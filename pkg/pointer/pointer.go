// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package pointer provides a generic helper for taking the address of a
// value literal, as partial-update inputs carry optional fields as pointers.
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a function or struct field
// that expects a pointer (e.g. pointer.To("something")).
func To[T any](v T) *T {
	return &v
}
