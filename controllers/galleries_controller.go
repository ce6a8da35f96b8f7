package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

// galleryForm binds JSON or the multipart form; image files travel separately
// under "images".
type galleryForm struct {
	Title        *string  `json:"title" form:"title"`
	Description  *string  `json:"description" form:"description"`
	EventID      *string  `json:"eventId" form:"eventId"`
	Images       []string `json:"images" form:"-"`
	RemoveImages []string `json:"removeImages" form:"removeImages"`
}

func (f *galleryForm) eventID() (*primitive.ObjectID, error) {
	if f.EventID == nil || strings.TrimSpace(*f.EventID) == "" {
		return nil, nil
	}
	id, err := services.ParseID(*f.EventID, "event")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ---------------- CREATE ----------------
func CreateGallery(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		var form galleryForm
		if err := bindBody(c, &form); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		eventID, err := form.eventID()
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		input := services.GalleryInput{EventID: eventID, Images: form.Images}
		if form.Title != nil {
			input.Title = *form.Title
		}
		if form.Description != nil {
			input.Description = *form.Description
		}

		uploaded, err := uploadImages(c, deps, utils.FolderGalleries)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		input.Images = append(input.Images, uploaded...)

		g, err := deps.Catalogue.CreateGallery(c.Request.Context(), adminID, input)
		if err != nil {
			discardImages(c, deps, uploaded)
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, g, "gallery created")
	}
}

// ---------------- LIST ----------------
func ListGalleries(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.Catalogue.ListGalleries(c.Request.Context())
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

// ---------------- GET ----------------
func GetGallery(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "gallery")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		g, err := deps.Catalogue.GetGallery(c.Request.Context(), id)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if utils.NotModified(c, g.ID, g.UpdatedAt) {
			return
		}
		utils.OK(c, http.StatusOK, g, "")
	}
}

// ---------------- UPDATE ----------------
func UpdateGallery(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "gallery")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		var form galleryForm
		if err := bindBody(c, &form); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		eventID, err := form.eventID()
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		uploaded, err := uploadImages(c, deps, utils.FolderGalleries)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		patch := services.GalleryPatch{
			Title:        form.Title,
			Description:  form.Description,
			EventID:      eventID,
			AddImages:    append(form.Images, uploaded...),
			RemoveImages: form.RemoveImages,
		}

		g, err := deps.Catalogue.UpdateGallery(c.Request.Context(), id, patch)
		if err != nil {
			discardImages(c, deps, uploaded)
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, g, "gallery updated")
	}
}

// ---------------- DELETE ----------------
func DeleteGallery(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "gallery")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if err := deps.Catalogue.DeleteGallery(c.Request.Context(), id); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id}, "gallery deleted")
	}
}
