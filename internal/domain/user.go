package domain

// User — покупатель. Аутентификация живёт за пределами этого сервиса,
// здесь хранится только профиль и хеш пароля.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	IsAdmin      bool
	Street       string
	Apartment    string
	City         string
	Zip          string
	Country      string
}
