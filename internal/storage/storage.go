// Package storage defines the mirror store contract and its implementations.
// The mirror is a rebuildable cache of ledger-committed state; every
// implementation serialises read-modify-write updates so that racing
// transitions on the same record cannot overwrite each other.
package storage

import "rtigo/backend/internal/models"

// RequestPredicate filters request snapshots.
type RequestPredicate func(models.Request) bool

// ComplaintPredicate filters complaint snapshots.
type ComplaintPredicate func(models.Complaint) bool

// Storage is the mirror store contract. Reads return full-copy snapshots,
// never live references. Update operations report (nil, nil) when the target
// id is absent; callers check the returned snapshot rather than relying on an
// error.
type Storage interface {
	CreateUser(user *models.User) error
	FindUserByID(id string) (*models.User, error)
	ListUsersByRole(role string) ([]models.User, error)

	AddRequest(req *models.Request) error
	FindRequestByID(id string) (*models.Request, error)
	ListRequestsBy(pred RequestPredicate) ([]models.Request, error)
	UpdateRequest(id string, mutate func(*models.Request) error) (*models.Request, error)

	AddComplaint(c *models.Complaint) error
	FindComplaintByID(id string) (*models.Complaint, error)
	ListComplaintsBy(pred ComplaintPredicate) ([]models.Complaint, error)
	UpdateComplaint(id string, mutate func(*models.Complaint) error) (*models.Complaint, error)
	// ArchiveComplaint atomically removes the complaint from the active set
	// and appends the minimal permanent record, provided both resolution
	// flags hold. Returns (nil, nil) when the complaint is absent or the
	// quorum is not yet met.
	ArchiveComplaint(id string) (*models.ArchivedComplaint, error)
	ListArchivedComplaints() ([]models.ArchivedComplaint, error)

	AppendTiming(kind models.TimingKind, rec models.TimingRecord) error
	ListTimings(kind models.TimingKind) ([]models.TimingRecord, error)
}

// RequestsByClient matches requests submitted by the given client.
func RequestsByClient(clientID string) RequestPredicate {
	return func(r models.Request) bool { return r.ClientID == clientID }
}

// RequestsByStatus matches requests in the given status.
func RequestsByStatus(status models.RequestStatus) RequestPredicate {
	return func(r models.Request) bool { return r.Status == status }
}

// RequestsByOfficerAndStatus matches requests assigned to the given officer
// that are in the given status.
func RequestsByOfficerAndStatus(officerID string, status models.RequestStatus) RequestPredicate {
	return func(r models.Request) bool {
		return r.AssignedOfficerUserID == officerID && r.Status == status
	}
}

// ComplaintsByRequest matches active complaints for the given request.
func ComplaintsByRequest(requestID string) ComplaintPredicate {
	return func(c models.Complaint) bool { return c.RequestID == requestID }
}

// ComplaintsByClient matches active complaints filed by the given client.
func ComplaintsByClient(clientID string) ComplaintPredicate {
	return func(c models.Complaint) bool { return c.ClientUserID == clientID }
}

// ComplaintsByOfficer matches active complaints against the given officer.
func ComplaintsByOfficer(officerID string) ComplaintPredicate {
	return func(c models.Complaint) bool { return c.OfficerUserID == officerID }
}

// AllComplaints matches every active complaint.
func AllComplaints() ComplaintPredicate {
	return func(models.Complaint) bool { return true }
}

// AllRequests matches every request.
func AllRequests() RequestPredicate {
	return func(models.Request) bool { return true }
}
