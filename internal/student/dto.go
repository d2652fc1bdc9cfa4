package student

import "github.com/fkhayef/duesledger/internal/ledger"

// CreateStudentRequest represents the request body for enrolling a student
type CreateStudentRequest struct {
	Name  string `json:"name" example:"Ama Mensah"`
	Email string `json:"email" example:"ama.mensah@dept.example.edu"`
	Level string `json:"level" example:"ICT 300"`
}

func (r *CreateStudentRequest) toInput() ledger.StudentInput {
	return ledger.StudentInput{Name: r.Name, Email: r.Email, Level: r.Level}
}

// UpdateLevelRequest represents the request body for changing a student's level
type UpdateLevelRequest struct {
	Level string `json:"level" example:"ICT 400"`
}
