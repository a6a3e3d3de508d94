package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SubscriptionRepositoryStub keeps subscriptions in-memory with version
// checks matching the real repository.
type SubscriptionRepositoryStub struct {
	mu   sync.Mutex
	Subs map[int64]*model.Subscription
	Next int64
	Err  error

	SweepBatch []model.Subscription
}

// NewSubscriptionRepositoryStub constructs the stub.
func NewSubscriptionRepositoryStub() *SubscriptionRepositoryStub {
	return &SubscriptionRepositoryStub{Subs: make(map[int64]*model.Subscription), Next: 1}
}

// Add seeds a subscription, assigning an ID when missing.
func (s *SubscriptionRepositoryStub) Add(sub model.Subscription) *model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == 0 {
		sub.ID = s.Next
		s.Next++
	} else if sub.ID >= s.Next {
		s.Next = sub.ID + 1
	}
	if sub.Version == 0 {
		sub.Version = 1
	}
	copied := sub
	s.Subs[sub.ID] = &copied
	return &copied
}

func (s *SubscriptionRepositoryStub) Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	sub.Version = 1
	return s.Add(*sub), nil
}

func (s *SubscriptionRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.Subs[id]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *SubscriptionRepositoryStub) ListByCustomer(ctx context.Context, customerID int64) ([]model.Subscription, error) {
	return s.list(func(sub *model.Subscription) bool { return sub.CustomerID == customerID })
}

func (s *SubscriptionRepositoryStub) ListByVendor(ctx context.Context, vendorID int64) ([]model.Subscription, error) {
	return s.list(func(sub *model.Subscription) bool { return sub.VendorID == vendorID })
}

func (s *SubscriptionRepositoryStub) ListInRange(ctx context.Context, from, to time.Time) ([]model.Subscription, error) {
	return s.list(func(sub *model.Subscription) bool {
		if sub.StartDate.After(to) {
			return false
		}
		if sub.EndDate != nil && sub.EndDate.Before(from) {
			return false
		}
		return true
	})
}

func (s *SubscriptionRepositoryStub) list(keep func(*model.Subscription) bool) ([]model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Subscription
	for _, sub := range s.Subs {
		if keep(sub) {
			result = append(result, *sub)
		}
	}
	return result, nil
}

func (s *SubscriptionRepositoryStub) Update(ctx context.Context, sub *model.Subscription) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Subs[sub.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != sub.Version {
		return domainErrors.ErrConflict
	}
	sub.Version++
	copied := *sub
	s.Subs[sub.ID] = &copied
	return nil
}

func (s *SubscriptionRepositoryStub) SelectBatchForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.SweepBatch
	s.SweepBatch = nil
	if limit > 0 && len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

// EventRepositoryStub mimics the append-only delivery event store,
// including the single-writer-per-occurrence uniqueness discipline.
type EventRepositoryStub struct {
	mu     sync.Mutex
	Events []*model.DeliveryEvent
	Next   int64
	Err    error
}

// NewEventRepositoryStub constructs the stub.
func NewEventRepositoryStub() *EventRepositoryStub {
	return &EventRepositoryStub{Next: 1}
}

func (s *EventRepositoryStub) Insert(ctx context.Context, ev *model.DeliveryEvent) (*model.DeliveryEvent, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.Events {
		if stored.ExternalID == ev.ExternalID {
			return nil, domainErrors.ErrAlreadyExists
		}
		if ev.Status == model.EventMatched && stored.Status == model.EventMatched &&
			stored.SubscriptionID == ev.SubscriptionID &&
			stored.MatchedDate != nil && ev.MatchedDate != nil &&
			stored.MatchedDate.Equal(*ev.MatchedDate) {
			return nil, domainErrors.ErrConflict
		}
	}
	copied := *ev
	copied.ID = s.Next
	copied.ReportedAt = time.Now()
	s.Next++
	s.Events = append(s.Events, &copied)
	result := copied
	return &result, nil
}

func (s *EventRepositoryStub) GetByID(ctx context.Context, id int64) (*model.DeliveryEvent, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.Events {
		if ev.ID == id {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *EventRepositoryStub) ListByMilkman(ctx context.Context, milkmanID int64) ([]model.DeliveryEvent, error) {
	return s.filter(func(ev *model.DeliveryEvent) bool { return ev.MilkmanID == milkmanID })
}

func (s *EventRepositoryStub) ListUnmatched(ctx context.Context) ([]model.DeliveryEvent, error) {
	return s.filter(func(ev *model.DeliveryEvent) bool { return ev.Status == model.EventUnmatched })
}

func (s *EventRepositoryStub) filter(keep func(*model.DeliveryEvent) bool) ([]model.DeliveryEvent, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.DeliveryEvent
	for _, ev := range s.Events {
		if keep(ev) {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (s *EventRepositoryStub) MatchedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var dates []time.Time
	for _, ev := range s.Events {
		if ev.SubscriptionID != subscriptionID || ev.Status != model.EventMatched || ev.MatchedDate == nil {
			continue
		}
		if ev.MatchedDate.Before(from) || ev.MatchedDate.After(to) {
			continue
		}
		dates = append(dates, *ev.MatchedDate)
	}
	return dates, nil
}

func (s *EventRepositoryStub) ListMatched(ctx context.Context, from, to time.Time) ([]model.DeliveryEvent, error) {
	return s.filter(func(ev *model.DeliveryEvent) bool {
		return ev.Status == model.EventMatched && ev.MatchedDate != nil &&
			!ev.MatchedDate.Before(from) && !ev.MatchedDate.After(to)
	})
}

func (s *EventRepositoryStub) Resolve(ctx context.Context, eventID int64, date time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *model.DeliveryEvent
	for _, ev := range s.Events {
		if ev.ID == eventID {
			target = ev
			break
		}
	}
	if target == nil {
		return domainErrors.ErrNotFound
	}
	for _, ev := range s.Events {
		if ev.ID != eventID && ev.Status == model.EventMatched &&
			ev.SubscriptionID == target.SubscriptionID &&
			ev.MatchedDate != nil && ev.MatchedDate.Equal(date) {
			return domainErrors.ErrConflict
		}
	}
	target.Status = model.EventMatched
	target.MatchedDate = &date
	return nil
}

// CalendarRepositoryStub serves vendor holidays from a slice.
type CalendarRepositoryStub struct {
	HolidayList []model.Holiday
	Err         error
}

func (s *CalendarRepositoryStub) AddHoliday(ctx context.Context, h model.Holiday) error {
	if s.Err != nil {
		return s.Err
	}
	for i, stored := range s.HolidayList {
		if stored.VendorID == h.VendorID && stored.Date.Equal(h.Date) {
			s.HolidayList[i].Reason = h.Reason
			return nil
		}
	}
	s.HolidayList = append(s.HolidayList, h)
	return nil
}

func (s *CalendarRepositoryStub) RemoveHoliday(ctx context.Context, vendorID int64, date time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	for i, stored := range s.HolidayList {
		if stored.VendorID == vendorID && stored.Date.Equal(date) {
			s.HolidayList = append(s.HolidayList[:i], s.HolidayList[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (s *CalendarRepositoryStub) Holidays(ctx context.Context, vendorID int64, from, to time.Time) ([]model.Holiday, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Holiday
	for _, h := range s.HolidayList {
		if h.VendorID == vendorID && !h.Date.Before(from) && !h.Date.After(to) {
			result = append(result, h)
		}
	}
	return result, nil
}

func (s *CalendarRepositoryStub) AllHolidays(ctx context.Context, from, to time.Time) ([]model.Holiday, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Holiday
	for _, h := range s.HolidayList {
		if !h.Date.Before(from) && !h.Date.After(to) {
			result = append(result, h)
		}
	}
	return result, nil
}

// MissedRepositoryStub keeps missed marks in-memory.
type MissedRepositoryStub struct {
	mu    sync.Mutex
	Marks map[int64]map[time.Time]time.Time
	Err   error
}

// NewMissedRepositoryStub constructs the stub.
func NewMissedRepositoryStub() *MissedRepositoryStub {
	return &MissedRepositoryStub{Marks: make(map[int64]map[time.Time]time.Time)}
}

func (s *MissedRepositoryStub) Mark(ctx context.Context, subscriptionID int64, date time.Time) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bySub, ok := s.Marks[subscriptionID]
	if !ok {
		bySub = make(map[time.Time]time.Time)
		s.Marks[subscriptionID] = bySub
	}
	if _, exists := bySub[date]; exists {
		return false, nil
	}
	bySub[date] = time.Now()
	return true, nil
}

func (s *MissedRepositoryStub) MissedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var dates []time.Time
	for d := range s.Marks[subscriptionID] {
		if !d.Before(from) && !d.After(to) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func (s *MissedRepositoryStub) ListRange(ctx context.Context, from, to time.Time) ([]model.MissedMark, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var marks []model.MissedMark
	for subID, bySub := range s.Marks {
		for d, at := range bySub {
			if !d.Before(from) && !d.After(to) {
				marks = append(marks, model.MissedMark{SubscriptionID: subID, Date: d, MarkedAt: at})
			}
		}
	}
	return marks, nil
}

// AuditRepositoryStub records appended audit entries.
type AuditRepositoryStub struct {
	mu      sync.Mutex
	Entries []model.AuditEntry
	Err     error
}

func (s *AuditRepositoryStub) Append(ctx context.Context, entry *model.AuditEntry) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, *entry)
	return nil
}

func (s *AuditRepositoryStub) ListBySubscription(ctx context.Context, subscriptionID int64) ([]model.AuditEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.AuditEntry
	for _, e := range s.Entries {
		if e.SubscriptionID == subscriptionID {
			result = append(result, e)
		}
	}
	return result, nil
}

// All returns a snapshot of recorded entries.
func (s *AuditRepositoryStub) All() []model.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditEntry(nil), s.Entries...)
}

// NotifierStub records emitted notifications; safe for concurrent use since
// notifications are dispatched from goroutines.
type NotifierStub struct {
	mu     sync.Mutex
	Events []model.Notification
}

func (s *NotifierStub) Emit(ctx context.Context, n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, n)
}

// Emitted returns a snapshot of recorded notifications.
func (s *NotifierStub) Emitted() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.Events...)
}
