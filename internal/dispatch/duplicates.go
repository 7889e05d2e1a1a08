package dispatch

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/models"
)

// defaultPediatricNote fills empty medical notes when the pediatric
// first-aid flag forces medical_needs on.
const defaultPediatricNote = "Requires pediatric first aid support"

// FindExisting returns the student whose name matches (case-insensitive,
// any class), or nil when no such student exists.
func (e *Engine) FindExisting(name string) (*models.Student, error) {
	students, err := e.store.GetAllStudents()
	if err != nil {
		return nil, err
	}
	for i := range students {
		if strings.EqualFold(students[i].Name, name) {
			return &students[i], nil
		}
	}
	return nil, nil
}

// applyMedicalConsistency enforces the pediatric-first-aid invariant:
// requiring pediatric first aid implies medical needs, auto-corrected with
// a default note when none was given.
func applyMedicalConsistency(st *models.Student) {
	if st.RequiresPediatricFirstAid && !st.MedicalNeeds {
		st.MedicalNeeds = true
		if st.MedicalNotes == "" {
			st.MedicalNotes = defaultPediatricNote
		}
	}
}

// CreateStudent persists a new student. Fails with DuplicateIdentityError
// when any existing student shares the name, regardless of class.
func (e *Engine) CreateStudent(st *models.Student) error {
	existing, err := e.FindExisting(st.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &DuplicateIdentityError{Name: st.Name, Class: existing.ClassName}
	}
	applyMedicalConsistency(st)
	if err := e.store.CreateStudent(st); err != nil {
		return err
	}
	return e.store.Commit()
}

// UpdateStudent persists edits to an existing student, re-applying the
// medical-consistency invariant.
func (e *Engine) UpdateStudent(st *models.Student) error {
	applyMedicalConsistency(st)
	if err := e.store.UpdateStudent(st); err != nil {
		return err
	}
	return e.store.Commit()
}

// duplicateGroups partitions students into equivalence classes by key and
// returns only classes with more than one member, each sorted by creation
// time so the earliest record comes first.
func duplicateGroups(students []models.Student, key func(models.Student) string) [][]models.Student {
	byKey := make(map[string][]models.Student)
	for _, st := range students {
		k := key(st)
		byKey[k] = append(byKey[k], st)
	}
	var groups [][]models.Student
	for _, group := range byKey {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		groups = append(groups, group)
	}
	return groups
}

// FindAllDuplicates groups students sharing both name (case-insensitive)
// and class.
func (e *Engine) FindAllDuplicates() ([][]models.Student, error) {
	students, err := e.store.GetAllStudents()
	if err != nil {
		return nil, err
	}
	return duplicateGroups(students, func(st models.Student) string {
		return strings.ToLower(st.Name) + "\x00" + st.ClassName
	}), nil
}

// FindNameDuplicates groups students sharing a name regardless of class.
func (e *Engine) FindNameDuplicates() ([][]models.Student, error) {
	students, err := e.store.GetAllStudents()
	if err != nil {
		return nil, err
	}
	return duplicateGroups(students, func(st models.Student) string {
		return strings.ToLower(st.Name)
	}), nil
}

// removeDuplicates deletes everything but the earliest-created member of
// each group. Idempotent: once the sweep has run, a second pass finds no
// groups and deletes nothing.
func (e *Engine) removeDuplicates(groups [][]models.Student) (int, error) {
	removed := 0
	for _, group := range groups {
		kept := group[0]
		for _, st := range group[1:] {
			if err := e.store.DeleteStudent(st.ID); err != nil {
				return removed, err
			}
			removed++
			logrus.WithFields(logrus.Fields{
				"name":  st.Name,
				"class": st.ClassName,
				"kept":  kept.ID,
			}).Info("removed duplicate student")
		}
	}
	if removed > 0 {
		if err := e.store.Commit(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// RemoveDuplicateStudents sweeps name+class duplicates. This is a
// standalone maintenance operation; normal writes only ever prevent new
// duplicates, never delete existing ones.
func (e *Engine) RemoveDuplicateStudents() (int, error) {
	groups, err := e.FindAllDuplicates()
	if err != nil {
		return 0, err
	}
	return e.removeDuplicates(groups)
}

// RemoveNameDuplicates sweeps duplicates keyed on name alone.
func (e *Engine) RemoveNameDuplicates() (int, error) {
	groups, err := e.FindNameDuplicates()
	if err != nil {
		return 0, err
	}
	return e.removeDuplicates(groups)
}
