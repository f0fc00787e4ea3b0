package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上传策略
var allowedExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".pdf": {},
}

const maxFileSize = 5 * 1024 * 1024 // 5MB

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "web/static/uploads"
	}
	return dir
}

// saveUpload 把一个上传文件存到板块目录，文件名用 uuid 重命名。
func saveUpload(board string, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExts[ext]; !ok {
		return "", fmt.Errorf("不允许的文件类型: %s", ext)
	}
	if file.Size > maxFileSize {
		return "", fmt.Errorf("文件过大(最大 5MB): %d", file.Size)
	}

	dir := filepath.Join(uploadDir(), board)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", err
	}
	return name, nil
}

type UploadHandler struct{}

func NewUploadHandler() *UploadHandler {
	return &UploadHandler{}
}

// Upload 单文件上传接口 POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	board := c.DefaultPostForm("board", "free")
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "缺少文件"})
		return
	}

	name, err := saveUpload(board, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filename": name})
}
