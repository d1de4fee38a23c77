package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rtigo/backend/internal/models"
)

// Service — реалізація Storage поверх PostgreSQL через GORM.
// Оновлення виконуються в транзакції з row-level lock (SELECT ... FOR
// UPDATE), щоб паралельні переходи на одному записі не губили оновлення.
type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// AutoMigrate створює/оновлює таблиці для всіх моделей дзеркала.
func (s *Service) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Request{},
		&models.Complaint{},
		&models.ArchivedComplaint{},
		&models.TimingRecord{},
	)
}

func (s *Service) CreateUser(user *models.User) error {
	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("identity_number = ?", user.IdentityNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.ErrIdentityRegistered
	}
	return s.DB.Create(user).Error
}

func (s *Service) FindUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ListUsersByRole(role string) ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) AddRequest(req *models.Request) error {
	// Clauses(OnConflict DoNothing): повторне віддзеркалення тієї ж події
	// реєстру не повинно падати.
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(req).Error
}

func (s *Service) FindRequestByID(id string) (*models.Request, error) {
	var req models.Request
	err := s.DB.First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequestsBy завантажує всі запити та фільтрує предикатом у пам'яті.
// Дзеркало невелике за визначенням; це та сама межа масштабу, що й у
// файлового сховища.
func (s *Service) ListRequestsBy(pred RequestPredicate) ([]models.Request, error) {
	var all []models.Request
	if err := s.DB.Order("created_at asc").Find(&all).Error; err != nil {
		return nil, err
	}
	var out []models.Request
	for _, r := range all {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) UpdateRequest(id string, mutate func(*models.Request) error) (*models.Request, error) {
	var updated *models.Request
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var req models.Request
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // no-op, caller checks the returned snapshot
		}
		if err != nil {
			return err
		}
		if err := mutate(&req); err != nil {
			return err
		}
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		updated = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) AddComplaint(c *models.Complaint) error {
	err := s.DB.Create(c).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// unique index on request_id: one active complaint per request
		return models.ErrDuplicateComplaint
	}
	return err
}

func (s *Service) FindComplaintByID(id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) ListComplaintsBy(pred ComplaintPredicate) ([]models.Complaint, error) {
	var all []models.Complaint
	if err := s.DB.Order("created_at asc").Find(&all).Error; err != nil {
		return nil, err
	}
	var out []models.Complaint
	for _, c := range all {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) UpdateComplaint(id string, mutate func(*models.Complaint) error) (*models.Complaint, error) {
	var updated *models.Complaint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Complaint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := mutate(&c); err != nil {
			return err
		}
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		updated = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) ArchiveComplaint(id string) (*models.ArchivedComplaint, error) {
	var archived *models.ArchivedComplaint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Complaint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !c.ResolvedByUser || !c.ResolvedByAdmin {
			return nil
		}
		arch := models.ArchivedComplaint{
			ID:                 c.ID,
			RequestID:          c.RequestID,
			ClientUserID:       c.ClientUserID,
			OfficerUserID:      c.OfficerUserID,
			ComplaintCreatedAt: c.CreatedAt,
			ResolvedAt:         time.Now(),
		}
		if err := tx.Create(&arch).Error; err != nil {
			return err
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		archived = &arch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (s *Service) ListArchivedComplaints() ([]models.ArchivedComplaint, error) {
	var out []models.ArchivedComplaint
	if err := s.DB.Order("resolved_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) AppendTiming(kind models.TimingKind, rec models.TimingRecord) error {
	rec.Kind = kind
	return s.DB.Create(&rec).Error
}

func (s *Service) ListTimings(kind models.TimingKind) ([]models.TimingRecord, error) {
	var out []models.TimingRecord
	if err := s.DB.Where("kind = ?", kind).Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
