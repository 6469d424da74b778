package dto

type CreateFamilyRequest struct {
	Name string `json:"name" form:"name"`
}

type InviteRequest struct {
	Email string `json:"email" form:"email"`
}
