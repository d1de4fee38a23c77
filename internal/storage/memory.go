package storage

import (
	"sync"
	"time"

	"rtigo/backend/internal/models"
)

// MemoryStore is an in-memory Storage used by tests and local development.
// A single mutex serialises every operation, which also makes each
// read-modify-write update atomic.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	requests  map[string]models.Request
	reqOrder  []string
	active    map[string]models.Complaint
	actOrder  []string
	resolved  []models.ArchivedComplaint
	timings   map[models.TimingKind][]models.TimingRecord
	clockFunc func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]models.User),
		requests:  make(map[string]models.Request),
		active:    make(map[string]models.Complaint),
		timings:   make(map[models.TimingKind][]models.TimingRecord),
		clockFunc: time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (m *MemoryStore) SetClock(clock func() time.Time) {
	m.clockFunc = clock
}

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IdentityNumber == user.IdentityNumber {
			return models.ErrIdentityRegistered
		}
	}
	if user.ID == "" {
		if err := user.BeforeCreate(nil); err != nil {
			return err
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) FindUserByID(id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (m *MemoryStore) ListUsersByRole(role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) AddRequest(req *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; ok {
		return nil // already mirrored, idempotent
	}
	m.requests[req.ID] = copyRequest(*req)
	m.reqOrder = append(m.reqOrder, req.ID)
	return nil
}

func (m *MemoryStore) FindRequestByID(id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := copyRequest(r)
	return &cp, nil
}

func (m *MemoryStore) ListRequestsBy(pred RequestPredicate) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Request
	for _, id := range m.reqOrder {
		if r, ok := m.requests[id]; ok && pred(r) {
			out = append(out, copyRequest(r))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateRequest(id string, mutate func(*models.Request) error) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	working := copyRequest(r)
	if err := mutate(&working); err != nil {
		return nil, err
	}
	m.requests[id] = working
	cp := copyRequest(working)
	return &cp, nil
}

func (m *MemoryStore) AddComplaint(c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.active {
		if existing.RequestID == c.RequestID {
			return models.ErrDuplicateComplaint
		}
	}
	m.active[c.ID] = copyComplaint(*c)
	m.actOrder = append(m.actOrder, c.ID)
	return nil
}

func (m *MemoryStore) FindComplaintByID(id string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[id]
	if !ok {
		return nil, nil
	}
	cp := copyComplaint(c)
	return &cp, nil
}

func (m *MemoryStore) ListComplaintsBy(pred ComplaintPredicate) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, id := range m.actOrder {
		if c, ok := m.active[id]; ok && pred(c) {
			out = append(out, copyComplaint(c))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateComplaint(id string, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[id]
	if !ok {
		return nil, nil
	}
	working := copyComplaint(c)
	if err := mutate(&working); err != nil {
		return nil, err
	}
	m.active[id] = working
	cp := copyComplaint(working)
	return &cp, nil
}

func (m *MemoryStore) ArchiveComplaint(id string) (*models.ArchivedComplaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[id]
	if !ok {
		return nil, nil
	}
	if !c.ResolvedByUser || !c.ResolvedByAdmin {
		return nil, nil
	}
	arch := models.ArchivedComplaint{
		ID:                 c.ID,
		RequestID:          c.RequestID,
		ClientUserID:       c.ClientUserID,
		OfficerUserID:      c.OfficerUserID,
		ComplaintCreatedAt: c.CreatedAt,
		ResolvedAt:         m.clockFunc(),
	}
	delete(m.active, id)
	m.resolved = append(m.resolved, arch)
	cp := arch
	return &cp, nil
}

func (m *MemoryStore) ListArchivedComplaints() ([]models.ArchivedComplaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ArchivedComplaint, len(m.resolved))
	copy(out, m.resolved)
	return out, nil
}

func (m *MemoryStore) AppendTiming(kind models.TimingKind, rec models.TimingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Kind = kind
	m.timings[kind] = append(m.timings[kind], rec)
	return nil
}

func (m *MemoryStore) ListTimings(kind models.TimingKind) ([]models.TimingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TimingRecord, len(m.timings[kind]))
	copy(out, m.timings[kind])
	return out, nil
}

func copyRequest(r models.Request) models.Request {
	r.AssignedAt = copyTime(r.AssignedAt)
	r.RespondedAt = copyTime(r.RespondedAt)
	return r
}

func copyComplaint(c models.Complaint) models.Complaint {
	c.NotifiedAt = copyTime(c.NotifiedAt)
	c.ResolutionAt = copyTime(c.ResolutionAt)
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
