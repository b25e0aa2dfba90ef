package salaries

// SalaryForm carries raw form input for create/update.
type SalaryForm struct {
	EmployeeID    string
	Amount        string
	EffectiveDate string
	Note          string
}
