package controllers

import (
	"github.com/gin-gonic/gin"

	"yatube-api/utils"
)

// AboutController serves the static informational pages.
type AboutController struct{}

// NewAboutController creates an AboutController.
func NewAboutController() *AboutController {
	return &AboutController{}
}

// Author returns the about-the-author page view model.
func (a *AboutController) Author(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"title": "About the author",
		"body":  "Yatube is a study project: a small blogging platform with groups, comments and subscriptions.",
	})
}

// Tech returns the technology page view model.
func (a *AboutController) Tech(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"title": "Technologies",
		"body":  "Gin, GORM, Redis and zap behind a classic server-rendered page flow.",
	})
}
