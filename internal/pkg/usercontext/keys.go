package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	ContextKey  = "USER_CONTEXT"
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyIsAdmin  = "is_admin"
)
