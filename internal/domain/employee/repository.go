package employee

import "context"

type EmployeeRepository interface {
	// ListByIDs returns the employees found among ids; unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]Employee, error)

	// ListActiveByBranch returns active employees of a branch ordered by name.
	ListActiveByBranch(ctx context.Context, branch string) ([]Employee, error)
}
