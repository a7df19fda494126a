package services

// AuthError reports an operation attempted without a signed-in user.
type AuthError struct {
	msg string
}

func (e *AuthError) Error() string { return e.msg }

// ValidationError reports malformed input rejected before any store
// write.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

var (
	ErrNotLoggedIn = &AuthError{msg: "not logged in"}

	ErrEmptyFoodName   = &ValidationError{msg: "empty food name"}
	ErrInvalidCalories = &ValidationError{msg: "invalid calories"}
	ErrInvalidMealType = &ValidationError{msg: "invalid meal type"}
	ErrMissingID       = &ValidationError{msg: "missing id"}
)
