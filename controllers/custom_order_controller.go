package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/n11047500/Capstone-2024-sub000/config"
	"github.com/n11047500/Capstone-2024-sub000/services"
	"github.com/n11047500/Capstone-2024-sub000/utils"
)

// maxCustomOrderBody leaves room for the form fields around a maximum size attachment
const maxCustomOrderBody = utils.MaxFileSize + 1<<20

// SubmitCustomOrder handles POST /api/v1/submit-form - emails a custom planter request to the store.
// Nothing is persisted; the optional attachment is mailed and, when S3 is configured, linked.
func SubmitCustomOrder(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCustomOrderBody)
	if err := c.Request.ParseMultipartForm(maxCustomOrderBody); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "File size exceeds maximum allowed size of 10 MB")
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_FORM", "Request must be multipart/form-data")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	if name == "" || email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_FIELDS", "Name and email are required")
		return
	}

	data := services.CustomOrderData{
		Name:           name,
		Email:          email,
		Phone:          c.PostForm("phone"),
		PlanterType:    c.PostForm("planter_type"),
		Dimensions:     c.PostForm("dimensions"),
		Colour:         c.PostForm("colour"),
		Quantity:       c.PostForm("quantity"),
		AdditionalInfo: c.PostForm("additional_info"),
	}

	var attachments []services.Attachment
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		stored, err := services.GetAttachmentService().Store(c.Request.Context(), fileHeader)
		if err != nil {
			respondUploadError(c, err)
			return
		}
		data.AttachmentName = stored.Filename
		data.AttachmentURL = stored.URL
		attachments = append(attachments, stored.Attachment)
	case errors.Is(err, http.ErrMissingFile):
		// attachment is optional
	default:
		respondError(c, http.StatusBadRequest, "INVALID_FORM", "Could not read the uploaded form")
		return
	}

	msg, err := services.CustomOrderEmail(config.GetConfig().StoreEmail, data)
	if err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send email", err)
		return
	}
	msg.Attachments = attachments

	if err := services.GetMailer().Send(c.Request.Context(), msg); err != nil {
		respondInternalError(c, "EMAIL_ERROR", "Failed to send email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Form submitted successfully",
	})
}
