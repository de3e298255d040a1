package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests. The stubs enforce the same
// conditional-write semantics the Mongo repositories do, so the race tests
// exercise the real contracts.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User // by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := cloneUser(user)
	clone.ID = "user" + strconv.Itoa(r.nextID)
	r.users[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) EmailTakenByOther(_ context.Context, email, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	clone := cloneUser(user)
	clone.PasswordHash = stored.PasswordHash
	r.users[user.ID] = clone
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdatePasswordByEmail(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) ListEmployees(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleEmployee {
			clone := cloneUser(u)
			clone.PasswordHash = ""
			out = append(out, clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) ListEmployeeRecipients(_ context.Context) ([]domain.EmailRecipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.EmailRecipient
	for _, u := range r.users {
		if u.Role == domain.RoleEmployee {
			out = append(out, domain.EmailRecipient{Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *stubUserRepo) CountEmployees(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleEmployee {
			n++
		}
	}
	return n, nil
}

// passwordOf reads a stored hash directly, bypassing the repository contract.
func (r *stubUserRepo) passwordOf(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u.PasswordHash
	}
	return ""
}

// ---------------------------------------------------------------------------

type stubOTPRepo struct {
	mu      sync.Mutex
	nextID  int
	records []*domain.OTPRecord
}

func newStubOTPRepo() *stubOTPRepo {
	return &stubOTPRepo{}
}

func (r *stubOTPRepo) Create(_ context.Context, rec *domain.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = "otp" + strconv.Itoa(r.nextID)
	clone := *rec
	r.records = append(r.records, &clone)
	return nil
}

func (r *stubOTPRepo) match(email, code string, now time.Time) *domain.OTPRecord {
	for _, rec := range r.records {
		if rec.Email == email && rec.Code == code && !rec.Used && now.Before(rec.ExpiresAt) {
			return rec
		}
	}
	return nil
}

func (r *stubOTPRepo) MatchValid(_ context.Context, email, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match(email, code, now) != nil, nil
}

func (r *stubOTPRepo) ConsumeIfValid(_ context.Context, email, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.match(email, code, now)
	if rec == nil {
		return domain.ErrInvalidOTP
	}
	rec.Used = true
	return nil
}

// expireAll backdates every record, simulating the 5-minute window passing.
func (r *stubOTPRepo) expireAll(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		rec.ExpiresAt = now.Add(-time.Second)
	}
}

func (r *stubOTPRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// ---------------------------------------------------------------------------

type stubAttendanceRepo struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*domain.AttendanceRecord // by (userID, day) key
}

func newStubAttendanceRepo() *stubAttendanceRepo {
	return &stubAttendanceRepo{records: make(map[string]*domain.AttendanceRecord)}
}

func dayKey(userID string, day time.Time) string {
	start, _ := domain.DayBounds(day)
	return fmt.Sprintf("%s|%s", userID, start.Format("2006-01-02"))
}

func (r *stubAttendanceRepo) CreateIfAbsent(_ context.Context, rec *domain.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(rec.UserID, rec.Date)
	if _, exists := r.records[key]; exists {
		return domain.ErrAlreadyCheckedIn
	}
	r.nextID++
	rec.ID = "att" + strconv.Itoa(r.nextID)
	clone := *rec
	r.records[key] = &clone
	return nil
}

func (r *stubAttendanceRepo) FindByUserAndDay(_ context.Context, userID string, day time.Time) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dayKey(userID, day)]
	if !ok {
		return nil, domain.ErrAttendanceNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubAttendanceRepo) SetCheckOut(_ context.Context, id string, checkOut time.Time, hours float64, status domain.AttendanceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			if rec.CheckOut != nil {
				return domain.ErrAlreadyCheckedOut
			}
			co := checkOut
			rec.CheckOut = &co
			rec.HoursWorked = hours
			rec.Status = status
			rec.UpdatedAt = checkOut
			return nil
		}
	}
	return domain.ErrAlreadyCheckedOut
}

func (r *stubAttendanceRepo) FindRecent(_ context.Context, userID string, from time.Time) ([]*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AttendanceRecord
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.Date.Before(from) {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubAttendanceRepo) Logs(_ context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AttendanceLogEntry
	for _, rec := range r.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if !filter.Day.IsZero() {
			start, end := domain.DayBounds(filter.Day)
			if rec.Date.Before(start) || !rec.Date.Before(end) {
				continue
			}
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, &domain.AttendanceLogEntry{
			AttendanceRecord: *rec,
			User:             domain.UserSummary{ID: rec.UserID},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubAttendanceRepo) CountCheckedIn(_ context.Context, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := domain.DayBounds(day)
	var n int64
	for _, rec := range r.records {
		if rec.CheckIn != nil && !rec.Date.Before(start) && rec.Date.Before(end) {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------

type stubEmailRepo struct {
	mu   sync.Mutex
	logs []*domain.EmailLog
}

func newStubEmailRepo() *stubEmailRepo {
	return &stubEmailRepo{}
}

func (r *stubEmailRepo) Insert(_ context.Context, log *domain.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *log
	r.logs = append(r.logs, &clone)
	return nil
}

func (r *stubEmailRepo) History(_ context.Context, filter domain.EmailHistoryFilter) ([]*domain.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.EmailLog
	for _, l := range r.logs {
		if filter.Business != "" && l.Business != filter.Business {
			continue
		}
		clone := *l
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func (r *stubEmailRepo) CountSentSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.logs {
		if !l.SentAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------

type stubThrottle struct {
	mu      sync.Mutex
	denied  bool
	asked   []string
	failErr error
}

func (t *stubThrottle) Allow(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failErr != nil {
		return false, t.failErr
	}
	t.asked = append(t.asked, email)
	return !t.denied, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type stubMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error // per-recipient failures
}

func newStubMailer() *stubMailer {
	return &stubMailer{failFor: make(map[string]error)}
}

func (m *stubMailer) Deliver(_ context.Context, to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return "", err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *stubMailer) deliveries() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

type stubTemplateRepo struct {
	sets map[string]map[string]domain.EmailTemplate // business → name → template
}

func (r *stubTemplateRepo) Find(_ context.Context, business, name string) (*domain.EmailTemplate, error) {
	if business == "" {
		business = domain.DefaultBusiness
	}
	set, ok := r.sets[business]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	tpl, ok := set[name]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return &tpl, nil
}

// stubDispatcher delivers synchronously on the caller's goroutine.
type stubDispatcher struct {
	mailer ports.Mailer
}

func (d *stubDispatcher) Enqueue(job ports.EmailJob) {
	result := domain.DeliveryResult{Recipient: job.Recipient.Email}
	msgID, err := d.mailer.Deliver(context.Background(), job.Recipient.Email, job.Subject, job.Body)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Success = true
		result.MessageID = msgID
	}
	job.Results <- result
}
