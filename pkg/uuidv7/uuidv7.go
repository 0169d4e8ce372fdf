// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is used as the primary key type across all Inkpost tables. Because it is
// time-sortable, it doubles as a pagination cursor: ordering by ID is
// ordering by creation time, so "newest" and "oldest" feeds need no separate
// timestamp index.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
