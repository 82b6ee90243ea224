package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/blogspace/patientzero/internal/votes"
)

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("votetype", validateVoteType); err != nil {
		return fmt.Errorf("register votetype: %w", err)
	}
	return nil
}

func validateVoteType(fl validator.FieldLevel) bool {
	_, ok := votes.ParseType(fl.Field().String())
	return ok
}
