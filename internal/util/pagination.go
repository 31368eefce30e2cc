package util

const DefaultPageSize = 10

// Calculate turns 1-based page/size query values into an offset/limit pair,
// clamping nonsense input to sane defaults.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
