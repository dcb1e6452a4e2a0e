package auth

// User is one dashboard account. Accounts are provisioned through
// configuration, not a database.
type User struct {
	Name         string
	PasswordHash string
}
