package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	FullName     string
	Username     string
	Email        string
	Password     string
	ProfileImage string
	Role         string
	IsActive     string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	FullName:     "fullname",
	Username:     "username",
	Email:        "email",
	Password:     "passwordhash",
	ProfileImage: "profileimage",
	Role:         "role",
	IsActive:     "isactive",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.FullName, t.Username, t.Email, t.Password, t.ProfileImage,
		t.Role, t.IsActive, t.CreatedAt, t.UpdatedAt,
	}
}
