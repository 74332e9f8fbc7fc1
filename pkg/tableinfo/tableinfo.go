package tableinfo

const (
	PostsTableName = "posts"

	PostIDColumn         = "id"
	PostTitleColumn      = "title"
	PostContentColumn    = "content"
	PostImageColumn      = "image"
	PostAuthorIDColumn   = "author_id"
	PostCategoryIDColumn = "category_id"
	PostLikesColumn      = "likes"
	PostCreatedAtColumn  = "created_at"
)

const (
	CommentsTableName = "comments"

	CommentIDColumn        = "id"
	CommentPostIDColumn    = "post_id"
	CommentAuthorIDColumn  = "author_id"
	CommentContentColumn   = "content"
	CommentCreatedAtColumn = "created_at"
)

const (
	UsersTableName = "users"

	UserIDColumn           = "id"
	UserUsernameColumn     = "username"
	UserEmailColumn        = "email"
	UserPasswordHashColumn = "password_hash"
	UserCreatedAtColumn    = "created_at"
)

const (
	CategoriesTableName = "categories"

	CategoryIDColumn   = "id"
	CategoryNameColumn = "name"
)
