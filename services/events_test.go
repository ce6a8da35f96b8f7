package services_test

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
)

func eventInput(name string) services.EventInput {
	now := time.Now()
	return services.EventInput{
		Name:                name,
		Fees:                250,
		MinParticipants:     1,
		MaxParticipants:     3,
		EventDate:           now.Add(10 * 24 * time.Hour),
		RegistrationEndDate: now.Add(5 * 24 * time.Hour),
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()

	bad := map[string]func(*services.EventInput){
		"no name":      func(in *services.EventInput) { in.Name = " " },
		"negative fee": func(in *services.EventInput) { in.Fees = -1 },
		"min over max": func(in *services.EventInput) { in.MinParticipants = 5 },
		"no date":      func(in *services.EventInput) { in.EventDate = time.Time{} },
	}
	for name, mutate := range bad {
		t.Run(name, func(t *testing.T) {
			in := eventInput("Quiz")
			mutate(&in)
			_, err := f.eventSvc.Create(ctx, admin, in)
			assertKind(t, err, services.KindValidation)
		})
	}

	e, err := f.eventSvc.Create(ctx, admin, eventInput("Quiz"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.IsPublished || e.Images == nil || e.CreatedBy != admin {
		t.Fatalf("created event = %+v", e)
	}
}

func TestPublishedListingAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()

	draft, _ := f.eventSvc.Create(ctx, admin, eventInput("Draft Night"))
	pubIn := eventInput("Published Night")
	pubIn.IsPublished = true
	pub, _ := f.eventSvc.Create(ctx, admin, pubIn)

	list, err := f.eventSvc.ListPublished(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != pub.ID {
		t.Fatalf("published list = %v", list)
	}

	if _, err := f.eventSvc.Get(ctx, draft.ID, false); services.KindOf(err) != services.KindNotFound {
		t.Fatalf("students must not see drafts: %v", err)
	}
	if _, err := f.eventSvc.Get(ctx, draft.ID, true); err != nil {
		t.Fatalf("admins see drafts: %v", err)
	}

	if _, err := f.eventSvc.SetPublished(ctx, draft.ID, true); err != nil {
		t.Fatal(err)
	}
	list, _ = f.eventSvc.ListPublished(ctx, "draft")
	if len(list) != 1 || list[0].ID != draft.ID {
		t.Fatalf("search after publish = %v", list)
	}
}

func TestGetEventCountsRegistrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.openEvent(t, "Counted", 0)

	got, err := f.eventSvc.Get(ctx, e.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.RegisteredCount == nil || *got.RegisteredCount != 0 {
		t.Fatalf("count = %v", got.RegisteredCount)
	}

	for _, email := range []string{"a@x.io", "b@x.io"} {
		s := f.student(t, email)
		if _, _, err := f.reg.Register(ctx, s.ID, s.Role, e.ID); err != nil {
			t.Fatal(err)
		}
	}
	got, _ = f.eventSvc.Get(ctx, e.ID, false)
	if *got.RegisteredCount != 2 {
		t.Fatalf("count = %d, want 2", *got.RegisteredCount)
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.eventSvc.Create(ctx, primitive.NewObjectID(), eventInput("Old"))

	name := "New"
	fees := 0.0
	got, err := f.eventSvc.Update(ctx, e.ID, models.EventUpdate{Name: &name, Fees: &fees})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New" || got.Fees != 0 {
		t.Fatalf("updated = %+v", got)
	}

	tooMany := 99
	_, err = f.eventSvc.Update(ctx, e.ID, models.EventUpdate{MinParticipants: &tooMany})
	assertKind(t, err, services.KindValidation)

	_, err = f.eventSvc.Update(ctx, e.ID, models.EventUpdate{})
	assertKind(t, err, services.KindValidation)

	if err := f.eventSvc.Delete(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	assertKind(t, f.eventSvc.Delete(ctx, e.ID), services.KindNotFound)

	_, err = f.eventSvc.Update(ctx, e.ID, models.EventUpdate{Name: &name})
	assertKind(t, err, services.KindNotFound)

	all, _ := f.eventSvc.ListAll(ctx, "", false)
	if len(all) != 0 {
		t.Fatal("deleted events are hidden from the admin list by default")
	}
	all, _ = f.eventSvc.ListAll(ctx, "", true)
	if len(all) != 1 || !all[0].IsDeleted {
		t.Fatalf("includeDeleted list = %v", all)
	}
}
