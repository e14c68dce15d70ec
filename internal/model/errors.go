// Package model holds the domain entities of the rental service along
// with the settlement transition rules and the canonical calendar-day
// logic shared by every component that evaluates availability.
package model

import "errors"

// ErrAlreadySettled is returned when an action is illegal given the
// booking's current payment state, such as re-issuing a payment intent for
// a paid booking or mock-paying twice.
var ErrAlreadySettled = errors.New("booking already settled")
