package model

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// colorHexRule accepts CSS-style "#RRGGBB" values, the only color format the
// schema persists.
var colorHexRule = validation.Match(regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`))

func validEnum(valid func() bool, name string) validation.RuleFunc {
	return func(interface{}) error {
		if !valid() {
			return fmt.Errorf("unknown %s code", name)
		}
		return nil
	}
}
