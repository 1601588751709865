package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube-api/middleware"
	"yatube-api/models"
	"yatube-api/utils"
)

// PostController serves the post list, detail, create and edit views plus
// comment creation.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// Index returns all posts newest-first. The route is wrapped by the page cache.
func (p *PostController) Index(ctx *gin.Context) {
	page := utils.ParsePage(ctx.Query("page"))

	var posts []models.Post
	query := p.db.Model(&models.Post{}).Preload("Author").Preload("Group").Order("created DESC")
	meta, err := utils.Paginate(query, page, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	utils.Success(ctx, gin.H{
		"title":      "Latest updates",
		"items":      posts,
		"pagination": meta,
	})
}

// GroupPosts returns the paginated posts of one group; unknown slugs are 404.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var group models.Group
	if err := p.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load group")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	var posts []models.Post
	query := p.db.Model(&models.Post{}).Where("group_id = ?", group.ID).
		Preload("Author").Order("created DESC")
	meta, err := utils.Paginate(query, page, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list group posts")
		return
	}

	utils.Success(ctx, gin.H{
		"title":      fmt.Sprintf("Posts of the %s community", group.Title),
		"group":      group,
		"items":      posts,
		"pagination": meta,
	})
}

// Profile returns an author's paginated posts and whether the current viewer
// follows them.
func (p *PostController) Profile(ctx *gin.Context) {
	username := ctx.Param("username")

	var author models.User
	if err := p.db.Where("username = ?", username).First(&author).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load user")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	var posts []models.Post
	query := p.db.Model(&models.Post{}).Where("author_id = ?", author.ID).
		Preload("Author").Preload("Group").Order("created DESC")
	meta, err := utils.Paginate(query, page, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list user posts")
		return
	}

	// Anonymous viewers never follow anybody.
	following := false
	if viewerID, ok := getUserID(ctx); ok {
		var count int64
		p.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewerID, author.ID).
			Count(&count)
		following = count > 0
	}

	utils.Success(ctx, gin.H{
		"title":       "Profile of " + author.Username,
		"author":      author,
		"following":   following,
		"posts_total": meta.Total,
		"items":       posts,
		"pagination":  meta,
	})
}

// Detail returns one post with its comments newest-first and an empty comment
// form. No side effects.
func (p *PostController) Detail(ctx *gin.Context) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.Preload("Author").Preload("Group").First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	var comments []models.Comment
	if err := p.db.Where("post_id = ?", post.ID).Preload("Author").
		Order("created DESC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load comments")
		return
	}

	var postsTotal int64
	p.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&postsTotal)

	utils.Success(ctx, gin.H{
		"title":       truncateTitle(post.Text, 30),
		"post":        post,
		"comments":    comments,
		"posts_total": postsTotal,
		"form":        gin.H{"text": ""},
	})
}

// CreateForm returns the empty post form view model.
func (p *PostController) CreateForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"is_edit": false,
		"form":    gin.H{"text": "", "group": nil, "image": nil},
	})
}

// Create persists a new post authored by the requester and redirects to their
// profile. Validation failures re-render the form with field errors and write
// nothing.
func (p *PostController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	text, groupID, image, fieldErrs := p.bindPostForm(ctx)
	if len(fieldErrs) > 0 {
		utils.FieldErrors(ctx, 40020, fieldErrs)
		return
	}

	post := models.Post{
		Text:     text,
		AuthorID: userID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to create post")
		return
	}

	username, _ := getUsername(ctx)
	utils.Redirect(ctx, "/profile/"+username+"/")
}

// EditForm returns the bound edit form; non-authors are redirected to the
// detail page instead, exactly like the submit path.
func (p *PostController) EditForm(ctx *gin.Context) {
	post, done := p.loadOwnPost(ctx)
	if done {
		return
	}

	utils.Success(ctx, gin.H{
		"is_edit": true,
		"form": gin.H{
			"text":  post.Text,
			"group": post.GroupID,
			"image": post.Image,
		},
	})
}

// Edit updates the mutable fields of a post in place. Non-authors are silently
// redirected to the detail page without any change; this is access control,
// not a validation failure.
func (p *PostController) Edit(ctx *gin.Context) {
	post, done := p.loadOwnPost(ctx)
	if done {
		return
	}

	text, groupID, image, fieldErrs := p.bindPostForm(ctx)
	if len(fieldErrs) > 0 {
		utils.FieldErrors(ctx, 40021, fieldErrs)
		return
	}

	post.Text = text
	post.GroupID = groupID
	if image != "" {
		post.Image = image
	}
	if err := p.db.Save(post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update post")
		return
	}

	utils.Redirect(ctx, fmt.Sprintf("/posts/%d/", post.ID))
}

// CommentRedirect answers GET on the comment endpoint: no creation ever
// happens there, the browser is sent back to the detail page.
func (p *PostController) CommentRedirect(ctx *gin.Context) {
	utils.Redirect(ctx, "/posts/"+ctx.Param("id")+"/")
}

// AddComment persists a comment on a post for the authenticated requester.
func (p *PostController) AddComment(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	text := utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if text == "" {
		utils.FieldErrors(ctx, 40022, map[string]string{"text": "this field is required"})
		return
	}
	if len([]rune(text)) > models.MaxCommentLength {
		utils.FieldErrors(ctx, 40023, map[string]string{
			"text": fmt.Sprintf("ensure this value has at most %d characters", models.MaxCommentLength),
		})
		return
	}

	comment := models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: userID,
	}
	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create comment")
		return
	}

	utils.Redirect(ctx, fmt.Sprintf("/posts/%d/", post.ID))
}

// loadOwnPost fetches the post from the path and applies the author-only rule.
// The bool result reports whether a response was already written.
func (p *PostController) loadOwnPost(ctx *gin.Context) (*models.Post, bool) {
	postID := ctx.Param("id")

	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return nil, true
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load post")
		return nil, true
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return nil, true
	}

	if post.AuthorID != userID {
		utils.Redirect(ctx, fmt.Sprintf("/posts/%d/", post.ID))
		return nil, true
	}

	return &post, false
}

// bindPostForm validates the shared create/edit form: text required, group
// optional but must exist, image optional.
func (p *PostController) bindPostForm(ctx *gin.Context) (text string, groupID *uint, image string, fieldErrs map[string]string) {
	fieldErrs = map[string]string{}

	text = utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if text == "" {
		fieldErrs["text"] = "this field is required"
	}

	if raw := strings.TrimSpace(ctx.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			fieldErrs["group"] = "select a valid choice"
		} else {
			var group models.Group
			if dbErr := p.db.First(&group, id).Error; dbErr != nil {
				fieldErrs["group"] = "select a valid choice"
			} else {
				gid := uint(id)
				groupID = &gid
			}
		}
	}

	if header, err := ctx.FormFile("image"); err == nil && header != nil {
		path, saveErr := utils.SaveImage(ctx, header)
		if saveErr != nil {
			fieldErrs["image"] = saveErr.Error()
		} else {
			image = path
		}
	}

	return text, groupID, image, fieldErrs
}

func truncateTitle(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func getUsername(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return "", false
	}
	name, ok := value.(string)
	return name, ok
}
