package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

// ---------------- INSTITUTES ----------------
func CreateInstitute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.InstituteInput
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		inst, err := deps.Catalogue.CreateInstitute(c.Request.Context(), input)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, inst, "institute created")
	}
}

func ListInstitutes(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.Catalogue.ListInstitutes(c.Request.Context())
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

func GetInstitute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "institute")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		inst, err := deps.Catalogue.GetInstitute(c.Request.Context(), id)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if utils.NotModified(c, inst.ID, inst.UpdatedAt) {
			return
		}
		utils.OK(c, http.StatusOK, inst, "")
	}
}

func UpdateInstitute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "institute")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		var patch services.InstitutePatch
		if err := bindBody(c, &patch); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		inst, err := deps.Catalogue.UpdateInstitute(c.Request.Context(), id, patch)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, inst, "institute updated")
	}
}

func DeleteInstitute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "institute")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if err := deps.Catalogue.DeleteInstitute(c.Request.Context(), id); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id}, "institute deleted")
	}
}

// InstituteDepartments is the public department picker for one institute.
func InstituteDepartments(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "institute")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		list, err := deps.Catalogue.ListDepartments(c.Request.Context(), id)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

// ---------------- DEPARTMENTS ----------------
func CreateDepartment(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.DepartmentInput
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		dept, err := deps.Catalogue.CreateDepartment(c.Request.Context(), input)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, dept, "department created")
	}
}

// ListDepartments optionally filters with ?instituteId=.
func ListDepartments(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var instituteID primitive.ObjectID
		if raw := strings.TrimSpace(c.Query("instituteId")); raw != "" {
			id, err := services.ParseID(raw, "institute")
			if err != nil {
				utils.Fail(c, deps.Log, err)
				return
			}
			instituteID = id
		}
		list, err := deps.Catalogue.ListDepartments(c.Request.Context(), instituteID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

func GetDepartment(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "department")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		dept, err := deps.Catalogue.GetDepartment(c.Request.Context(), id)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, dept, "")
	}
}

func UpdateDepartment(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "department")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		var patch services.DepartmentPatch
		if err := bindBody(c, &patch); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		dept, err := deps.Catalogue.UpdateDepartment(c.Request.Context(), id, patch)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, dept, "department updated")
	}
}

func DeleteDepartment(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "department")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if err := deps.Catalogue.DeleteDepartment(c.Request.Context(), id); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id}, "department deleted")
	}
}

// ---------------- COORDINATORS ----------------
func CreateCoordinator(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CoordinatorInput
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		u, err := deps.Admin.CreateCoordinator(c.Request.Context(), input)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, u, "coordinator created")
	}
}

func ListCoordinators(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.Admin.ListCoordinators(c.Request.Context(), c.Query("q"))
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

// ---------------- USERS ----------------
func ListUsers(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(strings.TrimSpace(c.Query("role")))
		list, err := deps.Admin.ListUsers(c.Request.Context(), role, c.Query("q"))
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, list, "")
	}
}

// DeactivateUser backs DELETE /admin/users/:id. Accounts are never removed.
func DeactivateUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		id, err := pathID(c, "user")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if err := deps.Admin.DeactivateUser(c.Request.Context(), actorID, id); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id}, "user deactivated")
	}
}

// ---------------- STATS ----------------
func DashboardStats(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := deps.Admin.Stats(c.Request.Context())
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, st, "")
	}
}
