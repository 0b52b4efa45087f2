package availability

import "github.com/jakechorley/shift-planner/pkg/core/model"

// EmployeeOptions holds the catalog shifts one employee is able to work
type EmployeeOptions struct {
	Employee model.Employee
	Shifts   []model.Shift
}

// HasOptions returns false when the employee can't be given any shift
func (eo EmployeeOptions) HasOptions() bool {
	return len(eo.Shifts) > 0
}

// Filter returns the catalog shifts that don't touch any of the employee's
// unavailable hours. Catalog order is preserved. An empty result is legal.
func Filter(catalog []model.Shift, employee model.Employee) []model.Shift {
	blocked := unavailableMask(employee)

	shifts := make([]model.Shift, 0, len(catalog))
	for _, shift := range catalog {
		if shift.Mask()&blocked != 0 {
			continue
		}
		shifts = append(shifts, shift)
	}
	return shifts
}

// FilterAll computes shift options for every employee, keeping input order
func FilterAll(catalog []model.Shift, employees []model.Employee) []EmployeeOptions {
	options := make([]EmployeeOptions, len(employees))
	for i, employee := range employees {
		options[i] = EmployeeOptions{
			Employee: employee,
			Shifts:   Filter(catalog, employee),
		}
	}
	return options
}

// unavailableMask ignores hours outside the mask range, they can't overlap a shift
func unavailableMask(employee model.Employee) uint64 {
	var m uint64
	for _, h := range employee.Unavailable {
		if h < 0 || h >= model.MaxDayHours {
			continue
		}
		m |= 1 << uint(h)
	}
	return m
}
