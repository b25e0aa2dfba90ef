package projects

// ProjectForm carries raw form input for create/update.
type ProjectForm struct {
	Code        string
	Name        string
	Description string
	Status      string
	ManagerID   string
}
