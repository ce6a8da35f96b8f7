package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

// ---------------- REGISTER ----------------
func Register(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		res, err := deps.Auth.Register(c.Request.Context(), input)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, res, "registration successful")
	}
}

// ---------------- LOGIN ----------------
func Login(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" form:"email"`
			Password string `json:"password" form:"password"`
		}
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		res, err := deps.Auth.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, res, "login successful")
	}
}

// ---------------- PROFILE ----------------
func GetProfile(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		u, err := deps.Auth.Profile(c.Request.Context(), userID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, u, "")
	}
}

// UpdateProfile accepts JSON, or multipart with an optional "profilePhoto" file.
func UpdateProfile(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		var input struct {
			FullName string `json:"fullName" form:"fullName"`
			Phone    string `json:"phone" form:"phone"`
		}
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		upd := models.UserUpdate{FullName: input.FullName, Phone: input.Phone}
		photos, err := uploadField(c, deps, "profilePhoto", utils.FolderProfiles)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if len(photos) > 0 {
			upd.ProfilePhoto = photos[0]
		}

		u, err := deps.Auth.UpdateProfile(c.Request.Context(), userID, upd)
		if err != nil {
			discardImages(c, deps, photos)
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, u, "profile updated")
	}
}

// ---------------- MY REGISTRATIONS ----------------
func MyRegistrations(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		views, err := deps.Registrations.ListMine(c.Request.Context(), userID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, views, "")
	}
}
