package domain

// UserType enumerates the account categories supported by the platform.
type UserType int16

const (
	UserTypeStudent  UserType = 0
	UserTypeParent   UserType = 1
	UserTypeTeacher  UserType = 2
	UserTypeSchool   UserType = 3
	UserTypeAdmin    UserType = 4
	UserTypeInternal UserType = 5
)

// Valid reports whether the value is one of the known user types.
func (t UserType) Valid() bool {
	return t >= UserTypeStudent && t <= UserTypeInternal
}

// UserStatus enumerates account activation states.
type UserStatus int16

const (
	UserStatusInactive UserStatus = 0
	UserStatusActive   UserStatus = 1
)

// User mirrors the persisted representation in the users table.
// PasswordHash holds an argon2id digest and never leaves the service.
type User struct {
	ID           int64      `json:"userId"`
	UUID         string     `json:"uuid"`
	Username     string     `json:"username"`
	FullName     string     `json:"fullName"`
	Mobile       string     `json:"mobile"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	UserType     UserType   `json:"userType"`
	Role         int64      `json:"role"`
	Status       UserStatus `json:"status"`
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
