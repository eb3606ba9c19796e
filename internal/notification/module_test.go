package notification

import (
	"context"
	"testing"

	"homematch_backend/internal/email"
	"homematch_backend/internal/events"
	leadrepo "homematch_backend/internal/leads/repository"
	realtorrepo "homematch_backend/internal/realtors/repository"
	"homematch_backend/platform/logger"

	"github.com/google/uuid"
)

type recordingSender struct {
	to   []string
	data []email.LeadAssignedData
}

func (r *recordingSender) SendLeadAssignedEmail(_ context.Context, toEmail string, data email.LeadAssignedData) error {
	r.to = append(r.to, toEmail)
	r.data = append(r.data, data)
	return nil
}

type fakeLeadReader struct{ lead leadrepo.Lead }

func (f fakeLeadReader) GetByID(context.Context, uuid.UUID) (leadrepo.Lead, error) {
	return f.lead, nil
}

type fakeRealtorReader struct{ realtor realtorrepo.Realtor }

func (f fakeRealtorReader) GetByID(context.Context, uuid.UUID) (realtorrepo.Realtor, error) {
	return f.realtor, nil
}

func TestLeadAssignedSendsEmailToRealtor(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &recordingSender{}

	mod := New(sender, log)
	mod.SetReaders(
		fakeLeadReader{lead: leadrepo.Lead{BuyerName: "Ana Buyer", Phone: "+12145550123", City: "Frisco", State: "TX"}},
		fakeRealtorReader{realtor: realtorrepo.Realtor{FullName: "Priya Sharma", Email: "priya@example.com"}},
	)
	mod.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      uuid.New(),
		RealtorID:   uuid.New(),
		MatchReason: "serves Frisco",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(sender.to) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(sender.to))
	}
	if sender.to[0] != "priya@example.com" {
		t.Fatalf("sent to %q", sender.to[0])
	}
	got := sender.data[0]
	if got.RealtorName != "Priya Sharma" || got.BuyerName != "Ana Buyer" || got.MatchReason != "serves Frisco" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestLeadAssignedWithoutReadersIsNoop(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	sender := &recordingSender{}

	mod := New(sender, log)
	mod.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		RealtorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("no email expected without wired readers")
	}
}
