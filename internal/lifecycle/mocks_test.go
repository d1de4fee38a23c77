package lifecycle_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// MockGateway is a testify mock of the ledger gateway, so tests can script
// commits, receipts and failures.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Submit(ctx context.Context, call ledger.Call) (*ledger.Receipt, error) {
	args := m.Called(ctx, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

// MockEventReader scripts the ledger's replayable event log.
type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) Events(ctx context.Context) ([]ledger.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Event), args.Error(1)
}

// MockContentStore injects content-store failures.
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Put(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockContentStore) Get(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContentStore) Pin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStorage injects mirror-store failures the real stores cannot produce.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) FindUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) ListUsersByRole(role string) ([]models.User, error) {
	args := m.Called(role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) AddRequest(req *models.Request) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockStorage) FindRequestByID(id string) (*models.Request, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStorage) ListRequestsBy(pred storage.RequestPredicate) ([]models.Request, error) {
	args := m.Called(pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStorage) UpdateRequest(id string, mutate func(*models.Request) error) (*models.Request, error) {
	args := m.Called(id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStorage) AddComplaint(c *models.Complaint) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockStorage) FindComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaintsBy(pred storage.ComplaintPredicate) ([]models.Complaint, error) {
	args := m.Called(pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaint(id string, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	args := m.Called(id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ArchiveComplaint(id string) (*models.ArchivedComplaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArchivedComplaint), args.Error(1)
}

func (m *MockStorage) ListArchivedComplaints() ([]models.ArchivedComplaint, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArchivedComplaint), args.Error(1)
}

func (m *MockStorage) AppendTiming(kind models.TimingKind, rec models.TimingRecord) error {
	args := m.Called(kind, rec)
	return args.Error(0)
}

func (m *MockStorage) ListTimings(kind models.TimingKind) ([]models.TimingRecord, error) {
	args := m.Called(kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimingRecord), args.Error(1)
}
