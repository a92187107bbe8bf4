package auth

// User is the operator account as reported by the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Company is a tenant the user may act on.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Principal is what the session remembers about the signed-in user.
type Principal struct {
	User        User      `json:"user"`
	Permissions []string  `json:"permissions"`
	Companies   []Company `json:"companies"`
}

// Company returns the company with id, if the principal may access it.
func (p Principal) Company(id string) (Company, bool) {
	for _, c := range p.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}

// LoginResult is the backend answer to a credential exchange.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	Token       string    `json:"token"`
	User        User      `json:"user"`
	Permissions []string  `json:"permissions"`
	Companies   []Company `json:"companies"`
}

// BearerToken returns whichever token field the backend filled.
func (r LoginResult) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// Credentials is the login request.
type Credentials struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CallbackURL string `json:"callbackUrl"`
	Subdomain   string `json:"subdomain"`
}

// Session is the view of the current login returned by /auth/me.
type Session struct {
	User           User      `json:"user"`
	Permissions    []string  `json:"permissions"`
	Companies      []Company `json:"companies"`
	CurrentCompany *Company  `json:"currentCompany,omitempty"`
}
