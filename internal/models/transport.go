package models

import "time"

type SignupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  uint64 `json:"user_id"`
	Email   string `json:"email"`
}

type PasswordResetReq struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type FilterReq struct {
	Tags     []string `json:"tags"`
	Title    []string `json:"title"`
	Company  []string `json:"company"`
	Location []string `json:"location"`
	JobType  []string `json:"job_type"`
	Time     string   `json:"time"`
}

type JobManageReq struct {
	Title           string   `json:"title" validate:"required"`
	Company         string   `json:"company" validate:"required"`
	Location        *string  `json:"location"`
	Description     *string  `json:"description"`
	ApplicationLink string   `json:"application_link" validate:"required,url"`
	JobType         string   `json:"job_type" validate:"required"`
	Tags            []string `json:"tags"`
	IsActive        *bool    `json:"is_active"`
}

type ActivityReq struct {
	Action   string `json:"action" validate:"required"`
	Activity string `json:"activity"`
}

type UserResp struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TagResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type JobListItem struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  *string   `json:"location"`
	JobType   string    `json:"job_type"`
	PostedBy  UserResp  `json:"posted_by"`
	Tags      []TagResp `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JobDetailResp struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        *string   `json:"location"`
	Description     *string   `json:"description"`
	ApplicationLink string    `json:"application_link"`
	JobType         string    `json:"job_type"`
	PostedBy        UserResp  `json:"posted_by"`
	Tags            []TagResp `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type JobManageResp struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        *string   `json:"location"`
	Description     *string   `json:"description"`
	ApplicationLink string    `json:"application_link"`
	JobType         string    `json:"job_type"`
	IsActive        bool      `json:"is_active"`
	PostedBy        UserResp  `json:"posted_by"`
	Tags            []TagResp `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type FacetResp struct {
	Tags     []string `json:"tags"`
	Title    []string `json:"title"`
	Company  []string `json:"company"`
	Location []string `json:"location"`
	JobType  []string `json:"job_type"`
	Time     []string `json:"time"`
}

type JobListResp struct {
	Filters FacetResp     `json:"filters"`
	Jobs    []JobListItem `json:"jobs"`
}

type DetailResp struct {
	Detail string `json:"detail"`
}
