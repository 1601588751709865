package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxImageSize caps uploaded post images at 20MB.
const MaxImageSize = 20 * 1024 * 1024

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// SaveImage stores an uploaded post image under static/uploads/YYYY/MM/DD and
// returns the public path persisted on the post. The uuid prefix prevents
// collisions and hides the original filename.
func SaveImage(ctx *gin.Context, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds %dMB", MaxImageSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := ctx.SaveUploadedFile(header, filepath.Join(baseDir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	return fmt.Sprintf("/static/uploads/%s/%s/%s/%s", now.Format("2006"), now.Format("01"), now.Format("02"), name), nil
}
