// Package complaint implements the complaint-resolution protocol: filing
// preconditions, officer resolution evidence, and the two-party quorum
// (client + admin) that archives a resolved complaint.
package complaint

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rtigo/backend/internal/config"
	"rtigo/backend/internal/content"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// Service handles the business logic for complaints.
type Service struct {
	Storage storage.Storage
	Content content.Store
	Clock   func() time.Time
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, c content.Store) *Service {
	return &Service{Storage: s, Content: c, Clock: time.Now}
}

// FileComplaint opens a complaint against a responded request. Only the
// request's own client may file, only once per request, and only after a
// response exists.
func (s *Service) FileComplaint(clientID, requestID, text string) (*models.Complaint, error) {
	req, err := s.Storage.FindRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.ErrRequestNotFound
	}
	if req.ClientID != clientID {
		return nil, models.ErrUnauthorized
	}
	if req.Status != models.StatusResponded {
		return nil, models.ErrNotYetResponded
	}

	c := &models.Complaint{
		ID:            uuid.New().String(),
		RequestID:     requestID,
		ClientUserID:  clientID,
		OfficerUserID: req.AssignedOfficerUserID,
		Text:          truncateText(text, config.MaxComplaintTextLen),
		CreatedAt:     s.Clock(),
	}
	// The store enforces one-active-complaint-per-request under its own
	// lock, so a racing duplicate loses there rather than here.
	if err := s.Storage.AddComplaint(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NotifyAdmin sets the notified flag. Idempotent; calling twice is harmless
// and keeps the first notification time.
func (s *Service) NotifyAdmin(complaintID string) (*models.Complaint, error) {
	updated, err := s.Storage.UpdateComplaint(complaintID, func(c *models.Complaint) error {
		if c.Notified {
			return nil
		}
		now := s.Clock()
		c.Notified = true
		c.NotifiedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrComplaintNotFound
	}
	return updated, nil
}

// AttachResolutionEvidence uploads the officer's resolution document and
// records its content id on the complaint. Attaching evidence and marking
// the complaint resolved are distinct steps: this sets neither quorum flag.
func (s *Service) AttachResolutionEvidence(ctx context.Context, officerID, complaintID string, blob []byte, filename string) (*models.Complaint, error) {
	c, err := s.Storage.FindComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, models.ErrComplaintNotFound
	}
	if c.OfficerUserID != officerID {
		return nil, models.ErrUnauthorized
	}

	contentID, err := s.Content.Put(ctx, blob)
	if err != nil {
		return nil, &models.ContentStoreError{Op: "upload resolution evidence", Err: err}
	}
	if err := s.Content.Pin(ctx, contentID); err != nil {
		return nil, &models.ContentStoreError{Op: "pin resolution evidence", Err: err}
	}

	updated, err := s.Storage.UpdateComplaint(complaintID, func(c *models.Complaint) error {
		now := s.Clock()
		c.ResolutionHash = contentID
		c.ResolutionFilename = filename
		c.ResolutionAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrComplaintNotFound
	}
	return updated, nil
}

// MarkResolvedByAdmin sets the admin acknowledgement and runs the quorum
// check. The returned archived record is non-nil when this call completed
// the quorum.
func (s *Service) MarkResolvedByAdmin(complaintID string) (*models.ArchivedComplaint, error) {
	updated, err := s.Storage.UpdateComplaint(complaintID, func(c *models.Complaint) error {
		c.ResolvedByAdmin = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrComplaintNotFound
	}
	return s.checkQuorum(updated)
}

// MarkResolvedByClient sets the client acknowledgement and runs the quorum
// check. Only the filing client may acknowledge.
func (s *Service) MarkResolvedByClient(clientID, complaintID string) (*models.ArchivedComplaint, error) {
	updated, err := s.Storage.UpdateComplaint(complaintID, func(c *models.Complaint) error {
		if c.ClientUserID != clientID {
			return models.ErrUnauthorized
		}
		c.ResolvedByUser = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrComplaintNotFound
	}
	return s.checkQuorum(updated)
}

// checkQuorum archives the complaint once both acknowledgements hold. The
// store performs the remove-and-append atomically and re-checks the flags
// under its lock, so two racing acknowledgers cannot archive twice: the
// second call finds the complaint gone and gets nil back.
func (s *Service) checkQuorum(c *models.Complaint) (*models.ArchivedComplaint, error) {
	if !c.ResolvedByUser || !c.ResolvedByAdmin {
		return nil, nil
	}
	return s.Storage.ArchiveComplaint(c.ID)
}

// ListActiveBy is a read-only filter over active complaints.
func (s *Service) ListActiveBy(pred storage.ComplaintPredicate) ([]models.Complaint, error) {
	return s.Storage.ListComplaintsBy(pred)
}

// ListArchived returns the permanent records of resolved complaints.
func (s *Service) ListArchived() ([]models.ArchivedComplaint, error) {
	return s.Storage.ListArchivedComplaints()
}

// truncateText caps the stored complaint body. A storage-growth guard, not
// a domain rule.
func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
