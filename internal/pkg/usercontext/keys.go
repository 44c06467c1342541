package usercontext

// Session keys shared by the auth controller and the member middleware.
const (
	AuthKey     = "authenticated"
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyIsAdmin  = "isAdmin"
	KeyPlan     = "user_plan"
)

// localsKey is where the middleware parks the resolved member for the request.
const localsKey = "MEMBER_CONTEXT"
