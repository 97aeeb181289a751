package models

type User struct {
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	CompanyName  string `json:"company_name" db:"company_name"`
	Email        string `json:"email" db:"email"`
	CrewPIN      string `json:"-" db:"crew_pin"`
}

// Session is what the auth endpoints hand back to a freshly authenticated
// caller. CrewPIN is only populated on signup.
type Session struct {
	Username    string `json:"username"`
	CompanyName string `json:"companyName"`
	Role        string `json:"role"`
	Token       string `json:"token"`
	CrewPIN     string `json:"crewPin,omitempty"`
}
