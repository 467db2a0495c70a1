package entity

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the identity record owned by the auth service. Views only ever
// read a reference to it.
type User struct {
	Id        string   `json:"id,omitempty"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Mobile    string   `json:"mobile,omitempty"`
	Location  string   `json:"location,omitempty"`
	Github    string   `json:"github,omitempty"`
	Linkedin  string   `json:"linkedin,omitempty"`
	Portfolio string   `json:"portfolio,omitempty"`
	Role      UserRole `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
