// Package validator collects field-level rule failures for request input.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"todo_app/internal/common"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

type Validator struct {
	errors map[string]string
}

func New() *Validator {
	return &Validator{errors: make(map[string]string)}
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) != 0
}

// ToError flattens the collected failures into one ErrValidation-wrapped
// error, so callers map it to 400 through the usual error taxonomy.
func (v *Validator) ToError() error {
	if !v.HasErrors() {
		return nil
	}
	keys := make([]string, 0, len(v.errors))
	for k := range v.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+v.errors[k])
	}
	return fmt.Errorf("%s: %w", strings.Join(parts, "; "), common.ErrValidation)
}

// CheckCond records msg under key when cond is false. The first failure
// per key wins.
func (v *Validator) CheckCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *Validator) CheckName(name string) {
	v.CheckCond(name != "", "name", "must be provided")
	v.CheckCond(len(name) <= 255, "name", "must be atmost 255 characters long")
}

func (v *Validator) CheckEmail(email string) {
	v.CheckCond(email != "", "email", "must be provided")
	v.CheckCond(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

func (v *Validator) CheckPassword(password string) {
	v.CheckCond(password != "", "password", "must be provided")
	v.CheckCond(len(password) >= 8, "password", "must be atleast 8 characters long")
	v.CheckCond(len(password) <= 72, "password", "must be atmost 72 characters long")
}
