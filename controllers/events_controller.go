package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

// eventForm is the admin create/edit payload. It binds from JSON or from the
// multipart form the console sends (prizes as prizes[first] etc.).
type eventForm struct {
	Name                *string        `json:"name" form:"name"`
	Description         *string        `json:"description" form:"description"`
	Location            *string        `json:"location" form:"location"`
	Fees                *float64       `json:"fees" form:"fees"`
	MinParticipants     *int           `json:"minParticipants" form:"minParticipants"`
	MaxParticipants     *int           `json:"maxParticipants" form:"maxParticipants"`
	MaxGroups           *int           `json:"maxGroups" form:"maxGroups"`
	EventDate           *string        `json:"eventDate" form:"eventDate"`
	RegistrationEndDate *string        `json:"registrationEndDate" form:"registrationEndDate"`
	IsPublished         *bool          `json:"isPublished" form:"isPublished"`
	DepartmentID        *string        `json:"departmentId" form:"departmentId"`
	Prizes              *models.Prizes `json:"prizes" form:"-"`
	PrizeFirst          *string        `json:"-" form:"prizes[first]"`
	PrizeSecond         *string        `json:"-" form:"prizes[second]"`
	PrizeThird          *string        `json:"-" form:"prizes[third]"`
	Images              []string       `json:"images" form:"-"`
}

func (f *eventForm) prizes() *models.Prizes {
	if f.Prizes != nil {
		return f.Prizes
	}
	if f.PrizeFirst == nil && f.PrizeSecond == nil && f.PrizeThird == nil {
		return nil
	}
	p := models.Prizes{}
	if f.PrizeFirst != nil {
		p.First = *f.PrizeFirst
	}
	if f.PrizeSecond != nil {
		p.Second = *f.PrizeSecond
	}
	if f.PrizeThird != nil {
		p.Third = *f.PrizeThird
	}
	return &p
}

// update turns the form into a partial update; only fields that were sent are set.
func (f *eventForm) update() (models.EventUpdate, error) {
	upd := models.EventUpdate{
		Name:            f.Name,
		Description:     f.Description,
		Location:        f.Location,
		Fees:            f.Fees,
		MinParticipants: f.MinParticipants,
		MaxParticipants: f.MaxParticipants,
		MaxGroups:       f.MaxGroups,
		IsPublished:     f.IsPublished,
		Prizes:          f.prizes(),
	}
	if f.Images != nil {
		upd.Images = f.Images
	}
	if f.EventDate != nil {
		t, _, err := utils.ParseTime(*f.EventDate)
		if err != nil {
			return upd, services.ValidationError("eventDate: " + err.Error())
		}
		upd.EventDate = &t
	}
	if f.RegistrationEndDate != nil {
		t, err := utils.ParseDeadline(*f.RegistrationEndDate)
		if err != nil {
			return upd, services.ValidationError("registrationEndDate: " + err.Error())
		}
		upd.RegistrationEndDate = &t
	}
	if f.DepartmentID != nil && strings.TrimSpace(*f.DepartmentID) != "" {
		id, err := services.ParseID(*f.DepartmentID, "department")
		if err != nil {
			return upd, err
		}
		upd.DepartmentID = &id
	}
	return upd, nil
}

// input fills a create payload from the form, defaulting missing counts to
// one participant per entry.
func (f *eventForm) input() (services.EventInput, error) {
	upd, err := f.update()
	if err != nil {
		return services.EventInput{}, err
	}
	e := models.Event{MinParticipants: 1, MaxParticipants: 1, Images: []string{}}
	upd.Apply(&e)
	return services.EventInput{
		Name:                e.Name,
		Description:         e.Description,
		Location:            e.Location,
		Fees:                e.Fees,
		MinParticipants:     e.MinParticipants,
		MaxParticipants:     e.MaxParticipants,
		MaxGroups:           e.MaxGroups,
		Prizes:              e.Prizes,
		EventDate:           e.EventDate,
		RegistrationEndDate: e.RegistrationEndDate,
		IsPublished:         e.IsPublished,
		Images:              e.Images,
		DepartmentID:        e.DepartmentID,
	}, nil
}

// ---------------- PUBLIC LIST ----------------
func ListEvents(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := deps.Events.ListPublished(c.Request.Context(), c.Query("q"))
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		versions := make([]utils.Version, len(events))
		for i, ev := range events {
			versions[i] = utils.Version{ID: ev.ID, UpdatedAt: ev.UpdatedAt}
		}
		if utils.NotModifiedList(c, c.Query("q"), versions) {
			return
		}
		utils.OK(c, http.StatusOK, events, "")
	}
}

// ---------------- PUBLIC GET ----------------
func GetEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		event, err := deps.Events.Get(c.Request.Context(), eventID, false)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		// registeredCount changes without touching updatedAt, so no ETag here
		c.Header("Cache-Control", "no-cache")
		utils.OK(c, http.StatusOK, event, "")
	}
}

// ---------------- ADMIN LIST ----------------
func AdminListEvents(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeDeleted, _ := strconv.ParseBool(c.Query("includeDeleted"))
		events, err := deps.Events.ListAll(c.Request.Context(), c.Query("q"), includeDeleted)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, events, "")
	}
}

func AdminGetEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		event, err := deps.Events.Get(c.Request.Context(), eventID, true)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, event, "")
	}
}

// ---------------- CREATE ----------------
func CreateEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, _, err := caller(c)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		var form eventForm
		if err := bindBody(c, &form); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		input, err := form.input()
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		uploaded, err := uploadImages(c, deps, utils.FolderEvents)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		input.Images = append(input.Images, uploaded...)

		event, err := deps.Events.Create(c.Request.Context(), adminID, input)
		if err != nil {
			discardImages(c, deps, uploaded)
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusCreated, event, "event created")
	}
}

// ---------------- UPDATE ----------------
// New uploads are appended to the event's images. Sending an "images" list
// in JSON replaces the list instead.
func UpdateEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		var form eventForm
		if err := bindBody(c, &form); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		upd, err := form.update()
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		uploaded, err := uploadImages(c, deps, utils.FolderEvents)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if len(uploaded) > 0 {
			base := upd.Images
			if base == nil {
				current, err := deps.Events.Get(c.Request.Context(), eventID, true)
				if err != nil {
					discardImages(c, deps, uploaded)
					utils.Fail(c, deps.Log, err)
					return
				}
				base = current.Images
			}
			upd.Images = append(append([]string{}, base...), uploaded...)
		}

		event, err := deps.Events.Update(c.Request.Context(), eventID, upd)
		if err != nil {
			discardImages(c, deps, uploaded)
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, event, "event updated")
	}
}

// ---------------- PUBLISH ----------------
func PublishEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		var input struct {
			IsPublished *bool `json:"isPublished" form:"isPublished"`
		}
		if err := bindBody(c, &input); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if input.IsPublished == nil {
			utils.Fail(c, deps.Log, services.ValidationError("isPublished is required"))
			return
		}

		event, err := deps.Events.SetPublished(c.Request.Context(), eventID, *input.IsPublished)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		msg := "event unpublished"
		if event.IsPublished {
			msg = "event published"
		}
		utils.OK(c, http.StatusOK, event, msg)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := pathID(c, "event")
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		if err := deps.Events.Delete(c.Request.Context(), eventID); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": eventID}, "event deleted")
	}
}

// ---------------- EVENT REGISTRATIONS ----------------
// Admins see every event; coordinators only their own scope.
func EventRegistrations(deps *Deps) gin.HandlerFunc {
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
		if err := deps.Admin.AuthorizeEventAccess(c.Request.Context(), userID, role, eventID); err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}

		views, err := deps.Registrations.ListForEvent(c.Request.Context(), eventID)
		if err != nil {
			utils.Fail(c, deps.Log, err)
			return
		}
		utils.OK(c, http.StatusOK, views, "")
	}
}
