package mq

// 路由键
const (
	RoutingKeyUserEmailChanged = "user.email_changed"
	RoutingKeyUserAvatarReset  = "user.avatar_reset"
)

// UserEmailChangedPayload 用户修改邮箱
type UserEmailChangedPayload struct {
	UserID   int64  `json:"user_id"`
	OldEmail string `json:"old_email"`
	NewEmail string `json:"new_email"`
}

// UserAvatarResetPayload 用户在 gravatar 上更新了头像，要求重新查询
type UserAvatarResetPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
