package dao

// Account status values stored in sys_user.status.
const (
	StatusDisabled = 0
	StatusActive   = 1
)

// DefaultRole is assigned to users created without a role.
const DefaultRole = "user"

// SysUser is a row of sys_user. Password holds the bcrypt hash once stored.
type SysUser struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"-"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	RoleID   string `json:"role_id" yaml:"role_id"`
	Status   int    `json:"status" yaml:"status"`
	Avatar   string `json:"avatar" yaml:"avatar"`
}

// Active reports whether the account may log in.
func (u SysUser) Active() bool { return u.Status == StatusActive }
