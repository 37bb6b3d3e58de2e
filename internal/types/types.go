// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"math"
)

// Record is a single flat, schema-less document within a collection.
// Keys are attribute names; one of them (the collection's key attribute)
// identifies the record.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the attribute as a string, or "" when it is absent or
// not a string.
func (r Record) String(attr string) string {
	s, _ := r[attr].(string)
	return s
}

// Bool reports whether the attribute is the boolean true.
func (r Record) Bool(attr string) bool {
	b, _ := r[attr].(bool)
	return b
}

// Attribute names shared by handlers and storage backends.
const (
	AttrID             = "id"
	AttrRegistrationID = "registrationId"
	AttrTimestamp      = "timestamp"
	AttrUsername       = "username"
	AttrPassword       = "password"
	AttrIsAdmin        = "isAdmin"
)

// Truthy reports whether a decoded JSON value counts as filled in on the
// registration form: null, false, "" and numeric zero do not; everything
// else, including empty objects and arrays, does.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	default:
		return true
	}
}

// Registration is the body of POST /api/register. Values are kept as the
// client sent them (strings, numbers, objects); every field must be truthy.
type Registration struct {
	EventID    any `json:"eventId"    validate:"required,truthy"`
	Name       any `json:"name"       validate:"required,truthy"`
	Email      any `json:"email"      validate:"required,truthy"`
	Mobile     any `json:"mobile"     validate:"required,truthy"`
	College    any `json:"college"    validate:"required,truthy"`
	RollNumber any `json:"rollnumber" validate:"required,truthy"`
}

// Credentials is the body of the signup and login endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminFlag is the body of PUT /api/admin/users/{username}.
// A pointer so a missing isAdmin can be told apart from false.
type AdminFlag struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

// LoginResponse is returned by POST /api/admin/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}
