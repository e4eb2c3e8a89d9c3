package helpers

// Ptr returns a pointer to the provided value. Handy for optional template
// fields such as slider bounds.
func Ptr[T any](val T) *T {
	return &val
}
