package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	bootstrap "github.com/phillip/frolic-api/bootstrap"
	middleware "github.com/phillip/frolic-api/middleware"
	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

const maxUploadFiles = 10

// Deps is everything a handler can reach.
type Deps struct {
	Log           *zap.SugaredLogger
	Phase         *bootstrap.Phase
	Auth          *services.AuthService
	Events        *services.EventService
	Registrations *services.RegistrationService
	Payments      *services.PaymentService
	Catalogue     *services.CatalogueService
	Admin         *services.AdminService
	Images        utils.ImageStore

	// DBPing backs the health check; nil skips the database probe.
	DBPing func(ctx context.Context) error
}

// caller returns the authenticated user's id and role.
func caller(c *gin.Context) (primitive.ObjectID, models.Role, error) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.KeyUserID))
	if err != nil {
		return primitive.NilObjectID, "", services.AuthError("invalid user id")
	}
	return id, models.Role(c.GetString(middleware.KeyRole)), nil
}

func pathID(c *gin.Context, what string) (primitive.ObjectID, error) {
	return services.ParseID(c.Param("id"), what)
}

// bindBody decodes JSON or form bodies, depending on Content-Type.
func bindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		return services.ValidationError("invalid request body")
	}
	return nil
}

// uploadImages pushes every file under the "images" field to the image store.
// A request without a multipart body uploads nothing.
func uploadImages(c *gin.Context, deps *Deps, folder string) ([]string, error) {
	return uploadField(c, deps, "images", folder)
}

func uploadField(c *gin.Context, deps *Deps, field, folder string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, services.ValidationError("invalid form data")
	}
	files := form.File[field]
	if len(files) > maxUploadFiles {
		return nil, services.ValidationError(fmt.Sprintf("at most %d images per request", maxUploadFiles))
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			discardImages(c, deps, urls)
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		url, err := deps.Images.Upload(c.Request.Context(), file, folder)
		file.Close()
		if err != nil {
			discardImages(c, deps, urls)
			if errors.Is(err, utils.ErrUploadsDisabled) {
				return nil, services.ValidationError(err.Error())
			}
			return nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// discardImages removes uploads whose owning write failed.
func discardImages(c *gin.Context, deps *Deps, urls []string) {
	for _, u := range urls {
		if err := deps.Images.Delete(context.WithoutCancel(c.Request.Context()), u); err != nil {
			deps.Log.Warnw("orphan image cleanup failed", "url", u, "err", err)
		}
	}
}
