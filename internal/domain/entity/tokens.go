package entity

// Tokens is the pair of JWTs kept in local persistent storage.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IsEmpty reports whether no token at all is stored.
func (t Tokens) IsEmpty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}
