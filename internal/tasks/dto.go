package tasks

// TaskForm carries raw form input for create/update.
type TaskForm struct {
	Title       string
	Description string
	ProjectID   string
	Status      string
	Priority    string
	AssignedTo  string
	DueDate     string
}
