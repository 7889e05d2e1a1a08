package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"hamilton_tms/internal/models"
)

var (
	_ Store = (*DatabaseStore)(nil)
	_ Store = (*FileStore)(nil)
)

// DatabaseStore is the relational backend. Every write autocommits, so
// Commit and Reload are no-ops; GetAll* always hit the database and so
// already reflect commits from other processes.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an initialized GORM handle.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (ds *DatabaseStore) Commit() error { return nil }
func (ds *DatabaseStore) Reload() error { return nil }

// translate maps GORM and postgres driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		// FK violation surfaces as a missing referenced record.
		return ErrNotFound
	}
	return err
}

// Schools

func (ds *DatabaseStore) GetAllSchools() ([]models.School, error) {
	var out []models.School
	return out, translate(ds.db.Find(&out).Error)
}

func (ds *DatabaseStore) GetSchool(id string) (*models.School, error) {
	var s models.School
	if err := ds.db.First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (ds *DatabaseStore) CreateSchool(s *models.School) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return translate(ds.db.Create(s).Error)
}

func (ds *DatabaseStore) UpdateSchool(s *models.School) error {
	s.UpdatedAt = time.Now()
	res := ds.db.Model(&models.School{}).Where("id = ?", s.ID).Updates(s)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) DeleteSchool(id string) error {
	var routes []models.Route
	if err := ds.db.Where("school_id = ?", id).Find(&routes).Error; err != nil {
		return translate(err)
	}
	for _, r := range routes {
		if err := ds.DeleteRoute(r.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	res := ds.db.Delete(&models.School{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Providers

func (ds *DatabaseStore) GetAllProviders() ([]models.Provider, error) {
	var out []models.Provider
	return out, translate(ds.db.Find(&out).Error)
}

func (ds *DatabaseStore) GetProvider(id string) (*models.Provider, error) {
	var p models.Provider
	if err := ds.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (ds *DatabaseStore) CreateProvider(p *models.Provider) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return translate(ds.db.Create(p).Error)
}

func (ds *DatabaseStore) UpdateProvider(p *models.Provider) error {
	p.UpdatedAt = time.Now()
	res := ds.db.Model(&models.Provider{}).Where("id = ?", p.ID).Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) DeleteProvider(id string) error {
	res := ds.db.Delete(&models.Provider{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Areas

func (ds *DatabaseStore) GetAllAreas() ([]models.Area, error) {
	var out []models.Area
	return out, translate(ds.db.Find(&out).Error)
}

func (ds *DatabaseStore) GetArea(id string) (*models.Area, error) {
	var a models.Area
	if err := ds.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (ds *DatabaseStore) CreateArea(a *models.Area) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return translate(ds.db.Create(a).Error)
}

func (ds *DatabaseStore) UpdateArea(a *models.Area) error {
	a.UpdatedAt = time.Now()
	res := ds.db.Model(&models.Area{}).Where("id = ?", a.ID).Updates(a)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) DeleteArea(id string) error {
	res := ds.db.Delete(&models.Area{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Routes

func (ds *DatabaseStore) GetAllRoutes() ([]models.Route, error) {
	var out []models.Route
	return out, translate(ds.db.Find(&out).Error)
}

func (ds *DatabaseStore) GetRoute(id string) (*models.Route, error) {
	var r models.Route
	if err := ds.db.First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (ds *DatabaseStore) CreateRoute(r *models.Route) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = models.RouteStatusNotPresent
	}
	if r.MaxCapacity == 0 {
		r.MaxCapacity = 50
	}
	return translate(ds.db.Create(r).Error)
}

func (ds *DatabaseStore) UpdateRoute(r *models.Route) error {
	r.UpdatedAt = time.Now()
	// Select("*") so false booleans (guide_present, hidden_from_admin) and
	// a cleared status are written too; Updates skips zero values otherwise.
	res := ds.db.Model(&models.Route{}).Where("id = ?", r.ID).
		Select("route_number", "status", "provider_id", "area_id", "school_id",
			"guide_present", "max_capacity", "hidden_from_admin", "updated_at").
		Updates(r)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) DeleteRoute(id string) error {
	// Vacate members first so no student keeps a dangling route_id.
	if err := ds.db.Model(&models.Student{}).Where("route_id = ?", id).
		Update("route_id", "").Error; err != nil {
		return translate(err)
	}
	res := ds.db.Delete(&models.Route{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Students

func (ds *DatabaseStore) GetAllStudents() ([]models.Student, error) {
	var out []models.Student
	return out, translate(ds.db.Find(&out).Error)
}

func (ds *DatabaseStore) GetStudent(id string) (*models.Student, error) {
	var st models.Student
	if err := ds.db.First(&st, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (ds *DatabaseStore) CreateStudent(st *models.Student) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	return translate(ds.db.Create(st).Error)
}

func (ds *DatabaseStore) UpdateStudent(st *models.Student) error {
	st.UpdatedAt = time.Now()
	res := ds.db.Model(&models.Student{}).Where("id = ?", st.ID).
		Select("name", "class_name", "school_id", "parent1_name", "parent1_phone",
			"parent2_name", "parent2_phone", "address", "medical_needs",
			"requires_pediatric_first_aid", "medical_notes", "harness",
			"safeguarding_notes", "updated_at").
		Updates(st)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) DeleteStudent(id string) error {
	res := ds.db.Delete(&models.Student{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Membership

func (ds *DatabaseStore) StudentsForRoute(routeID string) ([]models.Student, error) {
	var out []models.Student
	return out, translate(ds.db.Where("route_id = ?", routeID).Find(&out).Error)
}

func (ds *DatabaseStore) AssignStudentToRoute(studentID, routeID string) error {
	var r models.Route
	if err := ds.db.First(&r, "id = ?", routeID).Error; err != nil {
		return translate(err)
	}
	// Reassignment is just the FK move; the old route's membership is
	// derived, nothing on it needs touching.
	res := ds.db.Model(&models.Student{}).Where("id = ?", studentID).
		Updates(map[string]interface{}{"route_id": routeID, "updated_at": time.Now()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *DatabaseStore) RemoveStudentFromRoute(studentID string) error {
	res := ds.db.Model(&models.Student{}).Where("id = ?", studentID).
		Updates(map[string]interface{}{"route_id": "", "updated_at": time.Now()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
