package user

type ChangePasswordReq struct {
	Password string `json:"password" validate:"required,min=6"`
}

type UserReq struct {
	Username  string   `json:"username" validate:"required,min=3"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password"`
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,oneof=ROLE_ADMIN ROLE_STAFF"`
	Status    string   `json:"status" validate:"omitempty,oneof=active inactive"`
}
