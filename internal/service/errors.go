package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRecipeNotFound is returned when the addressed recipe does not exist
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrReferenceNotFound is returned when a recipe points at a missing kitchen or ingredient
	ErrReferenceNotFound = errors.New("referenced entity not found")
)

// ReferenceError lists the kitchen or ingredient keys that could not be resolved
type ReferenceError struct {
	Entity string
	Keys   []string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(e.Keys, ", "))
}

func (e *ReferenceError) Unwrap() error {
	return ErrReferenceNotFound
}
