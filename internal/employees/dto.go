package employees

// EmployeeForm carries raw form input for create/update.
type EmployeeForm struct {
	NIK        string
	Name       string
	Position   string
	Department string
	Phone      string
	HireDate   string
	UserID     string
}
