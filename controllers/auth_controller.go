package controllers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube-api/middleware"
	"yatube-api/models"
	"yatube-api/utils"
)

const sessionDuration = 72 * time.Hour

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// AuthController is the local identity collaborator: signup, login, logout
// and the password change/reset flows.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Signup registers a local account with bcrypt hashing.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required,min=8,max=64"`
		Confirm  string `json:"confirm" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		utils.FieldErrors(ctx, 40002, map[string]string{"username": "letters, digits and -_. only"})
		return
	}
	if req.Email != "" && !emailRe.MatchString(req.Email) {
		utils.FieldErrors(ctx, 40003, map[string]string{"email": "enter a valid email address"})
		return
	}
	if req.Password != req.Confirm {
		utils.FieldErrors(ctx, 40004, map[string]string{"confirm": "passwords do not match"})
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// Login verifies credentials, issues a JWT and sets the session cookie used
// by page flows.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to issue token")
		return
	}

	ctx.SetCookie(middleware.SessionCookieName, token, int(sessionDuration.Seconds()), "/", "", false, true)
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until its natural expiration and drops
// the session cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if value, exists := ctx.Get(middleware.ContextTokenKey); exists {
		if token, ok := value.(string); ok && token != "" {
			if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
				utils.BlacklistToken(token, claims.ExpiresAt.Time)
			}
		}
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40407, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// PasswordChange sets a new password after verifying the old one.
func (a *AuthController) PasswordChange(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "unauthorized")
		return
	}

	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40408, "user not found")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		utils.FieldErrors(ctx, 40007, map[string]string{"old_password": "wrong password"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password changed"})
}

// PasswordReset issues a one-shot token and mails a reset link. The response
// never reveals whether the address belongs to an account.
func (a *AuthController) PasswordReset(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err == nil {
		token := utils.IssueResetToken(user.ID)
		if mailErr := utils.SendPasswordResetMail(user.Email, token); mailErr != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("password reset mail to user %d failed: %v", user.ID, mailErr)
			}
		}
	}

	utils.Success(ctx, gin.H{"message": "if the account exists, a reset link has been mailed"})
}

// PasswordResetConfirm consumes a reset token and sets the new password.
func (a *AuthController) PasswordResetConfirm(ctx *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid request payload")
		return
	}

	userID, ok := utils.ConsumeResetToken(req.Token)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid or expired reset token")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to hash password")
		return
	}
	if err := a.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password has been reset"})
}
