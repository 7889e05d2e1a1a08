package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/models"
)

// snapshot is the on-disk shape of the flat-file backend: one JSON document
// holding every entity map, keyed by ID.
type snapshot struct {
	Schools   map[string]*models.School   `json:"schools"`
	Providers map[string]*models.Provider `json:"providers"`
	Areas     map[string]*models.Area     `json:"areas"`
	Routes    map[string]*models.Route    `json:"routes"`
	Students  map[string]*models.Student  `json:"students"`
}

func newSnapshot() *snapshot {
	return &snapshot{
		Schools:   make(map[string]*models.School),
		Providers: make(map[string]*models.Provider),
		Areas:     make(map[string]*models.Area),
		Routes:    make(map[string]*models.Route),
		Students:  make(map[string]*models.Student),
	}
}

// FileStore persists all entities as a single JSON snapshot file. Reads of
// derived views reload the file first and every mutation flushes it back,
// so multiple processes sharing the file converge on last-write-wins.
//
// The mutex only guards in-process map integrity; it is not a consistency
// mechanism and does not change the last-write-wins semantics.
type FileStore struct {
	path string
	mu   sync.Mutex
	data *snapshot
}

// NewFileStore opens (or initializes) the snapshot at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: newSnapshot()}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Reload re-reads the snapshot file. A missing file is an empty dataset.
func (fs *FileStore) Reload() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		fs.data = newSnapshot()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", fs.path, err)
	}

	data := newSnapshot()
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", fs.path, err)
	}
	fs.data = data
	return nil
}

// Commit flushes the full dataset to disk. Callers treat every mutation as
// a commit point, so this runs synchronously on each write path.
func (fs *FileStore) Commit() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.commitLocked()
}

func (fs *FileStore) commitLocked() error {
	raw, err := json.Marshal(fs.data)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(fs.path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", fs.path, err)
	}
	logrus.WithField("path", fs.path).Debug("snapshot flushed")
	return nil
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Schools

func (fs *FileStore) GetAllSchools() ([]models.School, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.School, 0, len(fs.data.Schools))
	for _, s := range fs.data.Schools {
		out = append(out, *s)
	}
	return out, nil
}

func (fs *FileStore) GetSchool(id string) (*models.School, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	s, ok := fs.data.Schools[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (fs *FileStore) CreateSchool(s *models.School) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	stamp(&s.CreatedAt, &s.UpdatedAt)
	cp := *s
	fs.data.Schools[s.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) UpdateSchool(s *models.School) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Schools[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now()
	cp := *s
	fs.data.Schools[s.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) DeleteSchool(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Schools[id]; !ok {
		return ErrNotFound
	}
	// Deleting a school takes its routes with it.
	for rid, r := range fs.data.Routes {
		if r.SchoolID == id {
			fs.deleteRouteLocked(rid)
		}
	}
	delete(fs.data.Schools, id)
	return fs.commitLocked()
}

// Providers

func (fs *FileStore) GetAllProviders() ([]models.Provider, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.Provider, 0, len(fs.data.Providers))
	for _, p := range fs.data.Providers {
		out = append(out, *p)
	}
	return out, nil
}

func (fs *FileStore) GetProvider(id string) (*models.Provider, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.data.Providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (fs *FileStore) CreateProvider(p *models.Provider) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	cp := *p
	fs.data.Providers[p.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) UpdateProvider(p *models.Provider) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Providers[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	fs.data.Providers[p.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) DeleteProvider(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Providers[id]; !ok {
		return ErrNotFound
	}
	delete(fs.data.Providers, id)
	return fs.commitLocked()
}

// Areas

func (fs *FileStore) GetAllAreas() ([]models.Area, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.Area, 0, len(fs.data.Areas))
	for _, a := range fs.data.Areas {
		out = append(out, *a)
	}
	return out, nil
}

func (fs *FileStore) GetArea(id string) (*models.Area, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	a, ok := fs.data.Areas[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (fs *FileStore) CreateArea(a *models.Area) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	stamp(&a.CreatedAt, &a.UpdatedAt)
	cp := *a
	fs.data.Areas[a.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) UpdateArea(a *models.Area) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Areas[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	fs.data.Areas[a.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) DeleteArea(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Areas[id]; !ok {
		return ErrNotFound
	}
	delete(fs.data.Areas, id)
	return fs.commitLocked()
}

// Routes

func (fs *FileStore) GetAllRoutes() ([]models.Route, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.Route, 0, len(fs.data.Routes))
	for _, r := range fs.data.Routes {
		out = append(out, *r)
	}
	return out, nil
}

func (fs *FileStore) GetRoute(id string) (*models.Route, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, ok := fs.data.Routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (fs *FileStore) CreateRoute(r *models.Route) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = models.RouteStatusNotPresent
	}
	if r.MaxCapacity == 0 {
		r.MaxCapacity = 50
	}
	if r.StudentIDs == nil {
		r.StudentIDs = []string{}
	}
	stamp(&r.CreatedAt, &r.UpdatedAt)
	cp := *r
	fs.data.Routes[r.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) UpdateRoute(r *models.Route) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	existing, ok := fs.data.Routes[r.ID]
	if !ok {
		return ErrNotFound
	}
	// The membership list belongs to the store; callers mutate it only
	// through the assignment primitive.
	r.StudentIDs = existing.StudentIDs
	r.UpdatedAt = time.Now()
	cp := *r
	fs.data.Routes[r.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) DeleteRoute(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.data.Routes[id]; !ok {
		return ErrNotFound
	}
	fs.deleteRouteLocked(id)
	return fs.commitLocked()
}

func (fs *FileStore) deleteRouteLocked(id string) {
	if r, ok := fs.data.Routes[id]; ok {
		for _, sid := range r.StudentIDs {
			if st, ok := fs.data.Students[sid]; ok {
				st.RouteID = ""
			}
		}
	}
	delete(fs.data.Routes, id)
}

// Students

func (fs *FileStore) GetAllStudents() ([]models.Student, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.Student, 0, len(fs.data.Students))
	for _, st := range fs.data.Students {
		out = append(out, *st)
	}
	return out, nil
}

func (fs *FileStore) GetStudent(id string) (*models.Student, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, ok := fs.data.Students[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (fs *FileStore) CreateStudent(st *models.Student) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	stamp(&st.CreatedAt, &st.UpdatedAt)
	cp := *st
	fs.data.Students[st.ID] = &cp
	if st.RouteID != "" {
		fs.spliceIntoRouteLocked(st.ID, st.RouteID)
	}
	return fs.commitLocked()
}

func (fs *FileStore) UpdateStudent(st *models.Student) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	existing, ok := fs.data.Students[st.ID]
	if !ok {
		return ErrNotFound
	}
	// RouteID moves only through the assignment primitive.
	st.RouteID = existing.RouteID
	st.UpdatedAt = time.Now()
	cp := *st
	fs.data.Students[st.ID] = &cp
	return fs.commitLocked()
}

func (fs *FileStore) DeleteStudent(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, ok := fs.data.Students[id]
	if !ok {
		return ErrNotFound
	}
	if st.RouteID != "" {
		fs.spliceOutOfRouteLocked(id, st.RouteID)
	}
	delete(fs.data.Students, id)
	return fs.commitLocked()
}

// Membership

func (fs *FileStore) StudentsForRoute(routeID string) ([]models.Student, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, ok := fs.data.Routes[routeID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.Student, 0, len(r.StudentIDs))
	for _, sid := range r.StudentIDs {
		if st, ok := fs.data.Students[sid]; ok {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (fs *FileStore) AssignStudentToRoute(studentID, routeID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, ok := fs.data.Students[studentID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := fs.data.Routes[routeID]; !ok {
		return ErrNotFound
	}
	if st.RouteID != "" && st.RouteID != routeID {
		fs.spliceOutOfRouteLocked(studentID, st.RouteID)
	}
	st.RouteID = routeID
	st.UpdatedAt = time.Now()
	fs.spliceIntoRouteLocked(studentID, routeID)
	return fs.commitLocked()
}

func (fs *FileStore) RemoveStudentFromRoute(studentID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, ok := fs.data.Students[studentID]
	if !ok {
		return ErrNotFound
	}
	if st.RouteID != "" {
		fs.spliceOutOfRouteLocked(studentID, st.RouteID)
	}
	st.RouteID = ""
	st.UpdatedAt = time.Now()
	return fs.commitLocked()
}

func (fs *FileStore) spliceIntoRouteLocked(studentID, routeID string) {
	r, ok := fs.data.Routes[routeID]
	if !ok {
		return
	}
	for _, sid := range r.StudentIDs {
		if sid == studentID {
			return
		}
	}
	r.StudentIDs = append(r.StudentIDs, studentID)
}

func (fs *FileStore) spliceOutOfRouteLocked(studentID, routeID string) {
	r, ok := fs.data.Routes[routeID]
	if !ok {
		return
	}
	for i, sid := range r.StudentIDs {
		if sid == studentID {
			r.StudentIDs = append(r.StudentIDs[:i], r.StudentIDs[i+1:]...)
			return
		}
	}
}
