package employees

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errValidation = errors.New("employee validation failed")

// validate enforces domain rules the database schema cannot express.
func (s *Service) validate(emp Employee) error {
	if strings.TrimSpace(emp.NIK) == "" {
		return fmt.Errorf("%w: nik wajib diisi", errValidation)
	}
	if strings.TrimSpace(emp.Name) == "" {
		return fmt.Errorf("%w: nama wajib diisi", errValidation)
	}
	if emp.HireDate.IsZero() {
		return fmt.Errorf("%w: tanggal masuk wajib diisi", errValidation)
	}
	if emp.HireDate.After(time.Now().AddDate(1, 0, 0)) {
		return fmt.Errorf("%w: tanggal masuk terlalu jauh di masa depan", errValidation)
	}
	return nil
}

// ParseForm converts raw form input into a domain Employee. Parse errors come
// back keyed by field so the handler can re-render the form.
func ParseForm(form EmployeeForm) (Employee, map[string]string) {
	errs := make(map[string]string)
	emp := Employee{
		NIK:        strings.TrimSpace(form.NIK),
		Name:       strings.TrimSpace(form.Name),
		Position:   strings.TrimSpace(form.Position),
		Department: strings.TrimSpace(form.Department),
		Phone:      strings.TrimSpace(form.Phone),
	}
	if emp.NIK == "" {
		errs["NIK"] = "NIK wajib diisi"
	}
	if emp.Name == "" {
		errs["Name"] = "Nama wajib diisi"
	}
	if form.HireDate == "" {
		errs["HireDate"] = "Tanggal masuk wajib diisi"
	} else {
		hireDate, err := time.Parse("2006-01-02", form.HireDate)
		if err != nil {
			errs["HireDate"] = "Format tanggal tidak valid"
		} else {
			emp.HireDate = hireDate
		}
	}
	if strings.TrimSpace(form.UserID) != "" {
		userID, err := strconv.ParseInt(strings.TrimSpace(form.UserID), 10, 64)
		if err != nil || userID <= 0 {
			errs["UserID"] = "ID akun tidak valid"
		} else {
			emp.UserID = &userID
		}
	}
	if len(errs) > 0 {
		return Employee{}, errs
	}
	return emp, nil
}
