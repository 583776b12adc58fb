package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
)

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(employees ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee, len(employees))}
	for _, emp := range employees {
		r.Add(emp)
	}
	return r
}

type employeeSeed struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Designation *string `json:"designation"`
	PhoneNumber *string `json:"phone_number"`
	Branch      string  `json:"branch"`
	Status      string  `json:"employment_status"`
}

// LoadEmployees reads a JSON array of employees into a new repository.
func LoadEmployees(path string) (*EmployeeRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read employees file: %w", err)
	}

	var seeds []employeeSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employees file: %w", err)
	}

	r := NewEmployeeRepository()
	for i, s := range seeds {
		if s.ID == "" {
			return nil, fmt.Errorf("employee %d: id is required", i)
		}
		r.Add(employee.Employee{
			ID:               s.ID,
			FullName:         s.FullName,
			Designation:      s.Designation,
			PhoneNumber:      s.PhoneNumber,
			Branch:           s.Branch,
			EmploymentStatus: employee.EmploymentStatus(s.Status),
		})
	}
	return r, nil
}

// Add inserts or replaces an employee.
func (r *EmployeeRepository) Add(emp employee.Employee) {
	if emp.EmploymentStatus == "" {
		emp.EmploymentStatus = employee.EmploymentStatusActive
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[emp.ID] = emp
}

// ListByIDs implements employee.EmployeeRepository.
func (r *EmployeeRepository) ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	r.mu.RLock()
	var out []employee.Employee
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if emp, ok := r.employees[id]; ok {
			out = append(out, emp)
		}
	}
	r.mu.RUnlock()

	sortByName(out)
	return out, nil
}

// ListActiveByBranch implements employee.EmployeeRepository.
func (r *EmployeeRepository) ListActiveByBranch(ctx context.Context, branch string) ([]employee.Employee, error) {
	r.mu.RLock()
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.Branch == branch && emp.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, emp)
		}
	}
	r.mu.RUnlock()

	sortByName(out)
	return out, nil
}

func sortByName(employees []employee.Employee) {
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].FullName != employees[j].FullName {
			return employees[i].FullName < employees[j].FullName
		}
		return employees[i].ID < employees[j].ID
	})
}
