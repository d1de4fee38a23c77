package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rtigo/backend/internal/models"
)

// SchemaVersion is the current on-disk document version. Documents written
// before versioning (no schemaVersion tag, possibly missing collections) are
// migrated once at open time, never defaulted per read.
const SchemaVersion = 1

// document is the persisted mirror layout: one JSON file holding the named
// collections. The whole document is rewritten on every mutation, which caps
// practical scale; that is a known property of this store, kept deliberately.
type document struct {
	SchemaVersion      int                        `json:"schemaVersion"`
	Users              []models.User              `json:"users"`
	Requests           []models.Request           `json:"requests"`
	Complaints         []models.Complaint         `json:"complaints"`
	ResolvedComplaints []models.ArchivedComplaint `json:"resolvedComplaints"`
}

// timingDocument is the second persisted file, one collection per kind.
type timingDocument struct {
	SchemaVersion int                   `json:"schemaVersion"`
	Request       []models.TimingRecord `json:"request"`
	Assignment    []models.TimingRecord `json:"assignment"`
	Response      []models.TimingRecord `json:"response"`
}

// FileStore is the file-backed Storage. All records live in one JSON
// document (plus one for timings); a single mutex makes each
// read-modify-write-rewrite cycle exclusive.
type FileStore struct {
	mu          sync.Mutex
	dbPath      string
	timingsPath string
	doc         document
	timings     timingDocument
	clockFunc   func() time.Time
}

// OpenFileStore loads (or initialises) the mirror documents under dir and
// runs the schema migration.
func OpenFileStore(dir string) (*FileStore, error) {
	fsStore := &FileStore{
		dbPath:      filepath.Join(dir, "db.json"),
		timingsPath: filepath.Join(dir, "timings.json"),
		clockFunc:   time.Now,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := fsStore.load(); err != nil {
		return nil, err
	}
	return fsStore, nil
}

// SetClock overrides the time source. Tests only.
func (f *FileStore) SetClock(clock func() time.Time) {
	f.clockFunc = clock
}

func (f *FileStore) load() error {
	doc, migrated, err := loadDocument(f.dbPath)
	if err != nil {
		return err
	}
	f.doc = doc
	if migrated {
		if err := writeJSON(f.dbPath, f.doc); err != nil {
			return err
		}
	}
	tdoc, tmigrated, err := loadTimingDocument(f.timingsPath)
	if err != nil {
		return err
	}
	f.timings = tdoc
	if tmigrated {
		if err := writeJSON(f.timingsPath, f.timings); err != nil {
			return err
		}
	}
	return nil
}

// loadDocument reads the mirror document and reports whether a migration
// rewrite is needed (fresh file or pre-versioning layout).
func loadDocument(path string) (document, bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return migrateDocument(document{}), true, nil
	}
	if err != nil {
		return document{}, false, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, false, fmt.Errorf("mirror document %s: %w", path, err)
	}
	if doc.SchemaVersion == SchemaVersion {
		return doc, false, nil
	}
	if doc.SchemaVersion > SchemaVersion {
		return document{}, false, fmt.Errorf("mirror document %s: schema version %d is newer than supported %d", path, doc.SchemaVersion, SchemaVersion)
	}
	return migrateDocument(doc), true, nil
}

// migrateDocument upgrades a pre-versioning document: older files may lack
// the complaint collections entirely.
func migrateDocument(doc document) document {
	doc.SchemaVersion = SchemaVersion
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Requests == nil {
		doc.Requests = []models.Request{}
	}
	if doc.Complaints == nil {
		doc.Complaints = []models.Complaint{}
	}
	if doc.ResolvedComplaints == nil {
		doc.ResolvedComplaints = []models.ArchivedComplaint{}
	}
	return doc
}

func loadTimingDocument(path string) (timingDocument, bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return migrateTimingDocument(timingDocument{}), true, nil
	}
	if err != nil {
		return timingDocument{}, false, err
	}
	var doc timingDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return timingDocument{}, false, fmt.Errorf("timing document %s: %w", path, err)
	}
	if doc.SchemaVersion == SchemaVersion {
		return doc, false, nil
	}
	if doc.SchemaVersion > SchemaVersion {
		return timingDocument{}, false, fmt.Errorf("timing document %s: schema version %d is newer than supported %d", path, doc.SchemaVersion, SchemaVersion)
	}
	return migrateTimingDocument(doc), true, nil
}

func migrateTimingDocument(doc timingDocument) timingDocument {
	doc.SchemaVersion = SchemaVersion
	if doc.Request == nil {
		doc.Request = []models.TimingRecord{}
	}
	if doc.Assignment == nil {
		doc.Assignment = []models.TimingRecord{}
	}
	if doc.Response == nil {
		doc.Response = []models.TimingRecord{}
	}
	return doc
}

// MigrateFileStore runs the schema migration without keeping the store open.
// Used by the admin CLI.
func MigrateFileStore(dir string) error {
	_, err := OpenFileStore(dir)
	return err
}

func writeJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func (f *FileStore) persist() error {
	return writeJSON(f.dbPath, f.doc)
}

func (f *FileStore) persistTimings() error {
	return writeJSON(f.timingsPath, f.timings)
}

func (f *FileStore) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.doc.Users {
		if u.IdentityNumber == user.IdentityNumber {
			return models.ErrIdentityRegistered
		}
	}
	if user.ID == "" {
		if err := user.BeforeCreate(nil); err != nil {
			return err
		}
	}
	f.doc.Users = append(f.doc.Users, *user)
	if err := f.persist(); err != nil {
		f.doc.Users = f.doc.Users[:len(f.doc.Users)-1]
		return err
	}
	return nil
}

func (f *FileStore) FindUserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.doc.Users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FileStore) ListUsersByRole(role string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.doc.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *FileStore) AddRequest(req *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.doc.Requests {
		if r.ID == req.ID {
			return nil // already mirrored, idempotent
		}
	}
	f.doc.Requests = append(f.doc.Requests, copyRequest(*req))
	if err := f.persist(); err != nil {
		f.doc.Requests = f.doc.Requests[:len(f.doc.Requests)-1]
		return err
	}
	return nil
}

func (f *FileStore) FindRequestByID(id string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.doc.Requests {
		if r.ID == id {
			cp := copyRequest(r)
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FileStore) ListRequestsBy(pred RequestPredicate) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Request
	for _, r := range f.doc.Requests {
		if pred(r) {
			out = append(out, copyRequest(r))
		}
	}
	return out, nil
}

func (f *FileStore) UpdateRequest(id string, mutate func(*models.Request) error) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.doc.Requests {
		if r.ID != id {
			continue
		}
		working := copyRequest(r)
		if err := mutate(&working); err != nil {
			return nil, err
		}
		f.doc.Requests[i] = working
		if err := f.persist(); err != nil {
			// keep memory and disk in step
			f.doc.Requests[i] = r
			return nil, err
		}
		cp := copyRequest(working)
		return &cp, nil
	}
	return nil, nil
}

func (f *FileStore) AddComplaint(c *models.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.doc.Complaints {
		if existing.RequestID == c.RequestID {
			return models.ErrDuplicateComplaint
		}
	}
	f.doc.Complaints = append(f.doc.Complaints, copyComplaint(*c))
	if err := f.persist(); err != nil {
		f.doc.Complaints = f.doc.Complaints[:len(f.doc.Complaints)-1]
		return err
	}
	return nil
}

func (f *FileStore) FindComplaintByID(id string) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.doc.Complaints {
		if c.ID == id {
			cp := copyComplaint(c)
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FileStore) ListComplaintsBy(pred ComplaintPredicate) ([]models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Complaint
	for _, c := range f.doc.Complaints {
		if pred(c) {
			out = append(out, copyComplaint(c))
		}
	}
	return out, nil
}

func (f *FileStore) UpdateComplaint(id string, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.doc.Complaints {
		if c.ID != id {
			continue
		}
		working := copyComplaint(c)
		if err := mutate(&working); err != nil {
			return nil, err
		}
		f.doc.Complaints[i] = working
		if err := f.persist(); err != nil {
			f.doc.Complaints[i] = c
			return nil, err
		}
		cp := copyComplaint(working)
		return &cp, nil
	}
	return nil, nil
}

func (f *FileStore) ArchiveComplaint(id string) (*models.ArchivedComplaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.doc.Complaints {
		if c.ID != id {
			continue
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
			ResolvedAt:         f.clockFunc(),
		}
		prevComplaints := f.doc.Complaints
		prevResolved := f.doc.ResolvedComplaints
		trimmed := make([]models.Complaint, 0, len(prevComplaints)-1)
		trimmed = append(trimmed, prevComplaints[:i]...)
		trimmed = append(trimmed, prevComplaints[i+1:]...)
		f.doc.Complaints = trimmed
		f.doc.ResolvedComplaints = append(prevResolved, arch)
		if err := f.persist(); err != nil {
			f.doc.Complaints = prevComplaints
			f.doc.ResolvedComplaints = prevResolved
			return nil, err
		}
		cp := arch
		return &cp, nil
	}
	return nil, nil
}

func (f *FileStore) ListArchivedComplaints() ([]models.ArchivedComplaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ArchivedComplaint, len(f.doc.ResolvedComplaints))
	copy(out, f.doc.ResolvedComplaints)
	return out, nil
}

func (f *FileStore) AppendTiming(kind models.TimingKind, rec models.TimingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.Kind = kind
	var col *[]models.TimingRecord
	switch kind {
	case models.TimingRequest:
		col = &f.timings.Request
	case models.TimingAssignment:
		col = &f.timings.Assignment
	case models.TimingResponse:
		col = &f.timings.Response
	default:
		return fmt.Errorf("unknown timing kind %q", kind)
	}
	*col = append(*col, rec)
	if err := f.persistTimings(); err != nil {
		*col = (*col)[:len(*col)-1]
		return err
	}
	return nil
}

func (f *FileStore) ListTimings(kind models.TimingKind) ([]models.TimingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var src []models.TimingRecord
	switch kind {
	case models.TimingRequest:
		src = f.timings.Request
	case models.TimingAssignment:
		src = f.timings.Assignment
	case models.TimingResponse:
		src = f.timings.Response
	default:
		return nil, fmt.Errorf("unknown timing kind %q", kind)
	}
	out := make([]models.TimingRecord, len(src))
	copy(out, src)
	return out, nil
}
