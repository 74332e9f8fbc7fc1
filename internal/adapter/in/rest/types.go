package rest

import (
	"time"

	"inkwell/internal/model"
	"inkwell/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type createPostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId"`
	Image      string `json:"image"`
}

type updatePostRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Image      *string `json:"image"`
	CategoryID *string `json:"categoryId"`
}

type addCommentRequest struct {
	Content string `json:"content"`
}

type authorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type commentResponse struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Author    authorResponse `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Image     string            `json:"image,omitempty"`
	Author    authorResponse    `json:"author"`
	Category  *categoryResponse `json:"category,omitempty"`
	Likes     int64             `json:"likes"`
	Comments  []commentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
}

type listPostsResponse struct {
	Posts      []postResponse `json:"posts"`
	Page       int            `json:"page"`
	TotalCount int64          `json:"totalCount"`
	TotalPages int            `json:"totalPages"`
}

type likeResponse struct {
	Likes int64 `json:"likes"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toCategoryResponse(c model.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toPostResponse(v service.PostView) postResponse {
	resp := postResponse{
		ID:        v.ID,
		Title:     v.Title,
		Content:   v.Content,
		Image:     v.Image,
		Author:    authorResponse(v.Author),
		Likes:     v.Likes,
		Comments:  make([]commentResponse, 0, len(v.Comments)),
		CreatedAt: v.CreatedAt,
	}
	if v.Category != nil {
		cat := toCategoryResponse(*v.Category)
		resp.Category = &cat
	}
	for _, c := range v.Comments {
		resp.Comments = append(resp.Comments, commentResponse{
			ID:        c.ID,
			Content:   c.Content,
			Author:    authorResponse(c.Author),
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}
