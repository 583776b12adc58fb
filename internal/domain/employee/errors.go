package employee

import "errors"

var (
	ErrBranchNotFound = errors.New("branch has no active employees")
)
