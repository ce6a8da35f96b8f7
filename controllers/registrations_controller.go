package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	utils "github.com/phillip/frolic-api/utils"
)

// ---------------- REGISTER FOR EVENT ----------------
// Registering twice is not an error: the existing registration comes back with 200.
func RegisterForEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		reg, created, err := deps.Registrations.Register(c.Request.Context(), userID, role, eventID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if created {
			utils.OK(c, http.StatusCreated, reg, "registration created")
			return
		}
		utils.OK(c, http.StatusOK, reg, "already registered")
	}
}

// ---------------- REGISTRATION STATUS ----------------
func RegistrationStatus(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		state, err := deps.Registrations.CheckStatus(c.Request.Context(), userID, eventID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, state, "")
	}
}

// ---------------- GET ----------------
func GetRegistration(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		regID, err := pathID(c, "registration")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		reg, err := deps.Registrations.Get(c.Request.Context(), userID, role, regID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, reg, "")
	}
}

// ---------------- CHECKOUT ----------------
func Checkout(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		regID, err := pathID(c, "registration")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		var input struct {
			Method string `json:"method" form:"method"`
		}
		// an empty body means the default method
		if c.Request.ContentLength > 0 {
			if err := bindBody(c, &input); err != nil {
				utils.Fail(c, deps.Log, err)
				return
			}
		}

		res, err := deps.Payments.Checkout(c.Request.Context(), userID, regID, input.Method)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		msg := "payment pending"
		if res.Settled {
			msg = "payment confirmed"
		}
		utils.OK(c, http.StatusOK, res, msg)
	}
}

// ---------------- CONFIRM PAYMENT ----------------
func ConfirmPayment(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		regID, err := pathID(c, "registration")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		var input struct {
			TransactionID string `json:"transactionId" form:"transactionId"`
		}
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		reg, err := deps.Payments.Confirm(c.Request.Context(), userID, role, regID, input.TransactionID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, reg, "payment confirmed")
	}
}
