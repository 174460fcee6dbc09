package users

import (
	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
)

const perPage = 20

// Form is the submitted user form. Password is required only on create.
type Form struct {
	Name     string `validate:"required,max=120"`
	Phone    string `validate:"required,number,min=10,max=15"`
	Role     string `validate:"required"`
	Password string `validate:"omitempty,min=6,max=72"`
	IsActive bool
}

var formMessages = map[string]string{
	"Name":     "Name is required (max 120 characters).",
	"Phone":    "Enter a valid phone number (digits only).",
	"Role":     "Choose a role.",
	"Password": "Password must be 6 to 72 characters.",
}

func formFromUser(u galaxy.User) Form {
	return Form{Name: u.Name, Phone: u.Phone, Role: u.Role, IsActive: u.IsActive}
}

func (f Form) input() galaxy.UserInput {
	return galaxy.UserInput{Name: f.Name, Phone: f.Phone, Role: f.Role, Password: f.Password, IsActive: f.IsActive}
}

// RoleOption is a role choice in forms and filters.
type RoleOption struct {
	Value string
	Label string
}

func roleOptions() []RoleOption {
	out := make([]RoleOption, 0, len(access.AllRoles()))
	for _, role := range access.AllRoles() {
		out = append(out, RoleOption{Value: string(role), Label: role.Label()})
	}
	return out
}

// ListPage is the view model of the user list.
type ListPage struct {
	Users      []galaxy.User
	Search     string
	Role       string
	Roles      []RoleOption
	Pagination shared.Pagination
	CanCreate  bool
	CanEdit    bool
	CanDelete  bool
}

// FormPage is the view model of the create and edit forms.
type FormPage struct {
	ID     string
	Form   Form
	Errors map[string]string
	Roles  []RoleOption
}
