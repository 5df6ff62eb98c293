package service

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError reports a credential mismatch
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
