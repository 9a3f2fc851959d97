// Package validation validates configuration structs with go-playground
// validator tags and reports failures as INVALID_INPUT application errors.
//
//	type Profile struct {
//	    Program string        `mapstructure:"program" validate:"required"`
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(p)
package validation
