package transport

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	DueDateNum  int64    `json:"due_date_num"`
	Categories  []string `json:"categories"`
}

type CompleteTaskRequest struct {
	Completed bool `json:"completed"`
}
