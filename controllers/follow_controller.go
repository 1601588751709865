package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube-api/models"
	"yatube-api/utils"
)

// FollowController serves the follow feed and the follow/unfollow edges.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// Feed returns the paginated posts of every author the viewer follows.
func (f *FollowController) Feed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	page := utils.ParsePage(ctx.Query("page"))
	followed := f.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)

	var posts []models.Post
	query := f.db.Model(&models.Post{}).Where("author_id IN (?)", followed).
		Preload("Author").Preload("Group").Order("created DESC")
	meta, err := utils.Paginate(query, page, &posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list feed")
		return
	}

	utils.Success(ctx, gin.H{
		"title":      "Posts of your favorite authors",
		"items":      posts,
		"pagination": meta,
	})
}

// Follow creates the (follower, author) edge if absent. Following twice
// leaves one edge; self-follows are short-circuited before the database
// check constraint ever sees them.
func (f *FollowController) Follow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	author, done := f.loadAuthor(ctx)
	if done {
		return
	}

	if author.ID == userID {
		utils.Redirect(ctx, "/")
		return
	}

	follow := models.Follow{UserID: userID, AuthorID: author.ID}
	if err := f.db.Where(models.Follow{UserID: userID, AuthorID: author.ID}).
		FirstOrCreate(&follow).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to follow")
		return
	}

	utils.Redirect(ctx, "/")
}

// Unfollow removes the edge between the viewer and the named author. An
// absent edge is a silent no-op.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}

	author, done := f.loadAuthor(ctx)
	if done {
		return
	}

	if err := f.db.Where("user_id = ? AND author_id = ?", userID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to unfollow")
		return
	}

	utils.Redirect(ctx, "/")
}

func (f *FollowController) loadAuthor(ctx *gin.Context) (*models.User, bool) {
	username := ctx.Param("username")

	var author models.User
	if err := f.db.Where("username = ?", username).First(&author).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "user not found")
			return nil, true
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load user")
		return nil, true
	}

	return &author, false
}
