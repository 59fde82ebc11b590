package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/utils"
)

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves locally stored product images
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range utils.ImageExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only .png, .jpg and .jpeg images are served")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", utils.ContentTypeFor(filename))
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
