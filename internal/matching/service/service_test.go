package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"homematch_backend/internal/events"
	"homematch_backend/internal/matching/repository"
	"homematch_backend/internal/matching/transport"
	"homematch_backend/platform/apperr"
	"homematch_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store with the same commit semantics as the
// real repository: assignment is a compare-and-set guarded by one mutex.
type fakeStore struct {
	mu        sync.Mutex
	leads     map[uuid.UUID]*repository.Lead
	leadOrder []uuid.UUID
	realtors  map[uuid.UUID]*repository.Candidate

	leadCounts   repository.LeadCounts
	realtorStats repository.RealtorStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:    make(map[uuid.UUID]*repository.Lead),
		realtors: make(map[uuid.UUID]*repository.Candidate),
	}
}

func (f *fakeStore) addLead(lead repository.Lead) uuid.UUID {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Status == "" {
		lead.Status = "UNASSIGNED"
	}
	f.leads[lead.ID] = &lead
	f.leadOrder = append(f.leadOrder, lead.ID)
	return lead.ID
}

func (f *fakeStore) addRealtor(cand repository.Candidate) uuid.UUID {
	if cand.ID == uuid.Nil {
		cand.ID = uuid.New()
	}
	if cand.VerificationStatus == "" {
		cand.VerificationStatus = "VERIFIED"
	}
	f.realtors[cand.ID] = &cand
	return cand.ID
}

func (f *fakeStore) GetRealtor(_ context.Context, id uuid.UUID) (repository.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cand, ok := f.realtors[id]
	if !ok {
		return repository.Candidate{}, repository.ErrRealtorNotFound
	}
	return *cand, nil
}

func (f *fakeStore) GetLead(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrLeadNotFound
	}
	return *lead, nil
}

func (f *fakeStore) ListUnassignedLeads(_ context.Context) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0)
	for _, id := range f.leadOrder {
		if f.leads[id].Status == "UNASSIGNED" {
			out = append(out, *f.leads[id])
		}
	}
	return out, nil
}

func (f *fakeStore) ListEligibleRealtors(_ context.Context) ([]repository.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Candidate, 0)
	for _, cand := range f.realtors {
		if cand.VerificationStatus == "VERIFIED" && cand.CurrentLeadCount < cand.Capacity {
			out = append(out, *cand)
		}
	}
	return out, nil
}

func (f *fakeStore) Assign(_ context.Context, leadID, realtorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lead, ok := f.leads[leadID]
	if !ok {
		return repository.ErrLeadNotFound
	}
	if lead.Status != "UNASSIGNED" {
		return repository.ErrAlreadyAssigned
	}

	cand, ok := f.realtors[realtorID]
	if !ok {
		return repository.ErrRealtorNotFound
	}
	if cand.VerificationStatus != "VERIFIED" {
		return repository.ErrRealtorNotEligible
	}
	if cand.CurrentLeadCount >= cand.Capacity {
		return repository.ErrRealtorAtCapacity
	}

	lead.Status = "ASSIGNED"
	cand.CurrentLeadCount++
	return nil
}

func (f *fakeStore) GetLeadCounts(_ context.Context) (repository.LeadCounts, error) {
	return f.leadCounts, nil
}

func (f *fakeStore) GetRealtorStats(_ context.Context) (repository.RealtorStats, error) {
	return f.realtorStats, nil
}

func (f *fakeStore) ListRealtorsByLoad(_ context.Context, limit int, _ bool) ([]repository.RealtorLoad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.RealtorLoad, 0)
	for _, cand := range f.realtors {
		if len(out) == limit {
			break
		}
		out = append(out, repository.RealtorLoad{
			ID:               cand.ID,
			FullName:         cand.FullName,
			CurrentLeadCount: cand.CurrentLeadCount,
			Capacity:         cand.Capacity,
		})
	}
	return out, nil
}

var _ Store = (*fakeStore)(nil)

func newTestService(store Store) *Service {
	log := logger.New("development")
	return New(store, events.NewInMemoryBus(log), log)
}

func strPtr(s string) *string { return &s }

func txLead(city string) repository.Lead {
	return repository.Lead{BuyerName: "Test Buyer", City: city, State: "TX", ZipCode: "75034"}
}

func txRealtor(name string, current, capacity int) repository.Candidate {
	return repository.Candidate{
		FullName:         name,
		ServiceCities:    []string{"Frisco"},
		ServiceStates:    []string{"TX"},
		Languages:        []string{"English"},
		CurrentLeadCount: current,
		Capacity:         capacity,
	}
}

func TestAutoAssignPicksBestCandidate(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))

	// Same capacity band; only the city match separates them.
	cityMatch := store.addRealtor(txRealtor("City Match", 0, 10))
	stateOnly := txRealtor("State Only", 0, 10)
	stateOnly.ServiceCities = []string{"Houston"}
	store.addRealtor(stateOnly)

	svc := newTestService(store)
	resp, err := svc.AutoAssign(context.Background(), leadID)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if resp.RealtorID != cityMatch {
		t.Fatalf("assigned to %s, want city-matching realtor %s", resp.RealtorID, cityMatch)
	}
	if store.leads[leadID].Status != "ASSIGNED" {
		t.Fatalf("lead status = %s, want ASSIGNED", store.leads[leadID].Status)
	}
	if store.realtors[cityMatch].CurrentLeadCount != 1 {
		t.Fatalf("winner lead count = %d, want 1", store.realtors[cityMatch].CurrentLeadCount)
	}
}

func TestAutoAssignTieBreakPrefersLessLoaded(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))

	// Identical coverage; the emptier book must win via availability and,
	// when availability ties too, via the lead count tie-break.
	store.addRealtor(txRealtor("Busy", 5, 10))
	lighter := store.addRealtor(txRealtor("Light", 1, 10))

	svc := newTestService(store)
	resp, err := svc.AutoAssign(context.Background(), leadID)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if resp.RealtorID != lighter {
		t.Fatalf("assigned to %s, want less loaded realtor %s", resp.RealtorID, lighter)
	}
}

func TestAutoAssignDeterministicOnFullTie(t *testing.T) {
	store := newFakeStore()

	a := store.addRealtor(txRealtor("Twin A", 2, 10))
	b := store.addRealtor(txRealtor("Twin B", 2, 10))
	want := a
	if b.String() < a.String() {
		want = b
	}

	svc := newTestService(store)
	for i := 0; i < 5; i++ {
		leadID := store.addLead(txLead("Frisco"))
		preview, err := svc.PreviewMatches(context.Background(), leadID)
		if err != nil {
			t.Fatalf("PreviewMatches: %v", err)
		}
		if preview.Candidates[0].RealtorID != want {
			t.Fatalf("run %d: top candidate = %s, want lowest ID %s", i, preview.Candidates[0].RealtorID, want)
		}
	}
}

func TestAutoAssignExcludesRealtorsAtCapacity(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))

	store.addRealtor(txRealtor("Full Book", 10, 10))
	available := txRealtor("Has Room", 0, 10)
	available.ServiceCities = []string{"Houston"} // worse score, but only viable
	availableID := store.addRealtor(available)

	svc := newTestService(store)
	resp, err := svc.AutoAssign(context.Background(), leadID)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if resp.RealtorID != availableID {
		t.Fatalf("assigned to %s, want the under-capacity realtor %s", resp.RealtorID, availableID)
	}
}

func TestAutoAssignAlreadyAssignedLead(t *testing.T) {
	store := newFakeStore()
	lead := txLead("Frisco")
	lead.Status = "ASSIGNED"
	leadID := store.addLead(lead)
	store.addRealtor(txRealtor("Anyone", 0, 10))

	svc := newTestService(store)
	_, err := svc.AutoAssign(context.Background(), leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestAutoAssignNoEligibleCandidates(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))

	svc := newTestService(store)
	_, err := svc.AutoAssign(context.Background(), leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict when no realtors are eligible", err)
	}
}

func TestAutoAssignLeadNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.AutoAssign(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAutoAssignConcurrentSingleWinner(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))
	store.addRealtor(txRealtor("Solo", 0, 10))

	svc := newTestService(store)

	const callers = 16
	results := make(chan error, callers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := svc.AutoAssign(context.Background(), leadID)
			results <- err
		}()
	}
	start.Done()

	wins := 0
	for i := 0; i < callers; i++ {
		err := <-results
		if err == nil {
			wins++
			continue
		}
		if !apperr.Is(err, apperr.KindConflict) {
			t.Fatalf("loser err = %v, want conflict", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	if store.realtors[firstRealtorID(store)].CurrentLeadCount != 1 {
		t.Fatalf("realtor lead count inflated by losing callers")
	}
}

func firstRealtorID(store *fakeStore) uuid.UUID {
	for id := range store.realtors {
		return id
	}
	return uuid.Nil
}

func TestManualAssignCommitsChosenRealtor(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))
	// Operator can override ranking; even a poor match commits if eligible.
	chosen := txRealtor("Operator Pick", 3, 10)
	chosen.ServiceCities = []string{"Houston"}
	chosenID := store.addRealtor(chosen)

	svc := newTestService(store)
	resp, err := svc.ManualAssign(context.Background(), leadID, transport.ManualAssignRequest{RealtorID: chosenID})
	if err != nil {
		t.Fatalf("ManualAssign: %v", err)
	}
	if resp.RealtorID != chosenID || resp.RealtorName != "Operator Pick" {
		t.Fatalf("response = %+v", resp)
	}
	if store.leads[leadID].Status != "ASSIGNED" {
		t.Fatalf("lead not assigned")
	}
	if store.realtors[chosenID].CurrentLeadCount != 4 {
		t.Fatalf("lead count = %d, want 4", store.realtors[chosenID].CurrentLeadCount)
	}
}

func TestManualAssignTranslatesCapacityError(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))
	fullID := store.addRealtor(txRealtor("Full", 10, 10))

	svc := newTestService(store)
	_, err := svc.ManualAssign(context.Background(), leadID, transport.ManualAssignRequest{RealtorID: fullID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict for realtor at capacity", err)
	}
	if store.leads[leadID].Status != "UNASSIGNED" {
		t.Fatalf("failed manual assign must not mutate the lead")
	}
}

func TestManualAssignUnverifiedRealtor(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(txLead("Frisco"))
	pending := txRealtor("Pending", 0, 10)
	pending.VerificationStatus = "PENDING"
	pendingID := store.addRealtor(pending)

	svc := newTestService(store)
	_, err := svc.ManualAssign(context.Background(), leadID, transport.ManualAssignRequest{RealtorID: pendingID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict for unverified realtor", err)
	}
}

func TestDistributeAllIsolatesFailures(t *testing.T) {
	store := newFakeStore()

	// Realtor can take 4 leads; the 5th lead has nowhere to go.
	store.addRealtor(txRealtor("Only One", 0, 4))
	for i := 0; i < 5; i++ {
		store.addLead(txLead("Frisco"))
	}

	svc := newTestService(store)
	run, err := svc.DistributeAll(context.Background())
	if err != nil {
		t.Fatalf("DistributeAll: %v", err)
	}

	if run.Attempted != 5 {
		t.Fatalf("attempted = %d, want 5", run.Attempted)
	}
	if run.Assigned != 4 {
		t.Fatalf("assigned = %d, want 4", run.Assigned)
	}
	if run.Failed != 1 {
		t.Fatalf("failed = %d, want 1", run.Failed)
	}
	if len(run.Failures) != 1 || !strings.Contains(run.Failures[0].Reason, "no eligible realtors") {
		t.Fatalf("failures = %+v, want one no-eligible-realtors entry", run.Failures)
	}
	if run.Message != "4 of 5 leads assigned" {
		t.Fatalf("message = %q", run.Message)
	}
}

func TestDistributeAllProcessesOldestFirst(t *testing.T) {
	store := newFakeStore()
	store.addRealtor(txRealtor("Only One", 0, 1))

	first := store.addLead(txLead("Frisco"))
	second := store.addLead(txLead("Frisco"))

	svc := newTestService(store)
	run, err := svc.DistributeAll(context.Background())
	if err != nil {
		t.Fatalf("DistributeAll: %v", err)
	}

	if run.Assigned != 1 {
		t.Fatalf("assigned = %d, want 1", run.Assigned)
	}
	if store.leads[first].Status != "ASSIGNED" {
		t.Fatalf("oldest lead must be assigned first")
	}
	if store.leads[second].Status != "UNASSIGNED" {
		t.Fatalf("newer lead must wait when capacity runs out")
	}
}

func TestDistributeAllIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addRealtor(txRealtor("Only One", 0, 10))
	store.addLead(txLead("Frisco"))

	svc := newTestService(store)
	if _, err := svc.DistributeAll(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	run, err := svc.DistributeAll(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if run.Attempted != 0 || run.Assigned != 0 || run.Failed != 0 {
		t.Fatalf("second run = %+v, want empty backlog", run)
	}
	if run.Message != "0 of 0 leads assigned" {
		t.Fatalf("message = %q", run.Message)
	}
}

func TestDistributeAllEmptyBacklog(t *testing.T) {
	svc := newTestService(newFakeStore())
	run, err := svc.DistributeAll(context.Background())
	if err != nil {
		t.Fatalf("DistributeAll: %v", err)
	}
	if run.Attempted != 0 || len(run.Failures) != 0 {
		t.Fatalf("run = %+v, want no-op", run)
	}
}

func TestPreviewMatchesRanksAndExplains(t *testing.T) {
	store := newFakeStore()
	lead := txLead("Frisco")
	lead.Language = strPtr("Hindi")
	leadID := store.addLead(lead)

	hindi := txRealtor("Hindi Speaker", 0, 10)
	hindi.Languages = []string{"English", "Hindi"}
	hindiID := store.addRealtor(hindi)
	store.addRealtor(txRealtor("English Only", 0, 10))

	svc := newTestService(store)
	preview, err := svc.PreviewMatches(context.Background(), leadID)
	if err != nil {
		t.Fatalf("PreviewMatches: %v", err)
	}

	if len(preview.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(preview.Candidates))
	}
	top := preview.Candidates[0]
	if top.RealtorID != hindiID {
		t.Fatalf("top candidate = %s, want Hindi speaker", top.RealtorName)
	}
	if top.TotalScore != 100 {
		t.Fatalf("top total = %d, want 100", top.TotalScore)
	}
	if top.Reason != "serves Frisco + speaks Hindi" {
		t.Fatalf("reason = %q", top.Reason)
	}
	if store.leads[leadID].Status != "UNASSIGNED" {
		t.Fatalf("preview must not assign the lead")
	}
}

func TestAnalyticsComputesRates(t *testing.T) {
	store := newFakeStore()
	store.leadCounts = repository.LeadCounts{Total: 10, Assigned: 7, Unassigned: 3, CreatedLast7Days: 4, AssignedLast7Days: 2}
	store.realtorStats = repository.RealtorStats{Verified: 6, ActiveVerified: 4, AtCapacity: 1, TotalAssignedLeads: 7}

	svc := newTestService(store)
	analytics, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}

	if analytics.AssignmentRate != 0.7 {
		t.Fatalf("assignment rate = %v, want 0.7", analytics.AssignmentRate)
	}
	if analytics.AvgLeadsPerRealtor != 1.75 {
		t.Fatalf("avg leads per realtor = %v, want 1.75", analytics.AvgLeadsPerRealtor)
	}
	if analytics.UnassignedLeads != 3 || analytics.RealtorsAtCapacity != 1 {
		t.Fatalf("analytics = %+v", analytics)
	}
}

func TestAnalyticsZeroDivisionGuards(t *testing.T) {
	svc := newTestService(newFakeStore())
	analytics, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if analytics.AssignmentRate != 0 || analytics.AvgLeadsPerRealtor != 0 {
		t.Fatalf("rates must be zero with no data, got %+v", analytics)
	}
}

func TestLeaderboardUtilization(t *testing.T) {
	store := newFakeStore()
	store.addRealtor(txRealtor("Half Full", 5, 10))

	svc := newTestService(store)
	rows, err := svc.TopPerformers(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopPerformers: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Utilization != 0.5 {
		t.Fatalf("utilization = %v, want 0.5", rows[0].Utilization)
	}
}
