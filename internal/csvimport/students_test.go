package csvimport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/store"
)

func newTestEngine(t *testing.T) *dispatch.Engine {
	t.Helper()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	return dispatch.NewEngine(fs)
}

const studentHeader = "Name,Class,Parent/Carer Name,Parent/Carer Phone,Address\n"

func TestImportStudentsPartialFailure(t *testing.T) {
	e := newTestEngine(t)

	content := studentHeader +
		"Emma Johnson,3A,Sarah Johnson,01234567890,1 High Street\n" +
		"Emma Johnson,3A,Sarah Johnson,01234567890,1 High Street\n" +
		"Oliver Smith,5B,Claire Smith,02076543210,45 Victoria Road\n"

	result := ImportStudents(e, content)
	require.Len(t, result.Success, 2)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "Row 3")
	require.Contains(t, result.Errors[0], "already exists")

	students, err := e.Store().GetAllStudents()
	require.NoError(t, err)
	require.Len(t, students, 2)
}

func TestImportStudentsStripsClassPrefix(t *testing.T) {
	e := newTestEngine(t)

	content := studentHeader +
		"Emma Johnson,Class 3,Sarah Johnson,01234567890,1 High Street\n"

	result := ImportStudents(e, content)
	require.Empty(t, result.Errors)
	require.Len(t, result.Success, 1)

	students, err := e.Store().GetAllStudents()
	require.NoError(t, err)
	require.Equal(t, "3", students[0].ClassName)
}

func TestImportStudentsLegacyParentColumns(t *testing.T) {
	e := newTestEngine(t)

	content := "Name,Class,Parent Name,Parent Phone,Address\n" +
		"Emma Johnson,3A,Sarah Johnson,01234567890,1 High Street\n"

	result := ImportStudents(e, content)
	require.Empty(t, result.Errors)

	students, err := e.Store().GetAllStudents()
	require.NoError(t, err)
	require.Equal(t, "Sarah Johnson", students[0].Parent1Name)
	require.Equal(t, "01234567890", students[0].Parent1Phone)
}

func TestImportStudentsMissingColumns(t *testing.T) {
	e := newTestEngine(t)

	result := ImportStudents(e, "Name,Class\nEmma Johnson,3A\n")
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "Missing required columns")
	require.Contains(t, result.Errors[0], "Address")
	require.Empty(t, result.Success)
}

func TestImportStudentsScreensFreeText(t *testing.T) {
	e := newTestEngine(t)

	content := studentHeader +
		"Emma Johnson,3A,Sarah Johnson,01234567890,1 fucking Lane\n" +
		"Oliver Smith,5B,Claire Smith,02076543210,45 Victoria Road\n"

	result := ImportStudents(e, content)
	require.Len(t, result.Success, 1)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "Row 2")
	require.Contains(t, result.Errors[0], "inappropriate language")

	students, err := e.Store().GetAllStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "Oliver Smith", students[0].Name)
}

func TestImportStudentsFlagsAndBlanks(t *testing.T) {
	e := newTestEngine(t)

	content := "Name,Class,Parent/Carer Name,Parent/Carer Phone,Address,Has Medical Needs,Requires Pediatric First Aid,Harness\n" +
		"Emma Johnson,3A,Sarah Johnson,01234567890,1 High Street,Yes,y,Yes\n" +
		",,,,,,,\n" +
		"Oliver Smith,5B,,02076543210,45 Victoria Road,No,,\n"

	result := ImportStudents(e, content)
	// The all-blank row is skipped silently; the row missing a parent name
	// is a field error.
	require.Len(t, result.Success, 1)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "Row 4: Missing required fields")

	students, err := e.Store().GetAllStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.True(t, students[0].MedicalNeeds)
	require.True(t, students[0].RequiresPediatricFirstAid)
	require.Equal(t, "Yes", students[0].Harness)
}

func TestStudentsTemplateParses(t *testing.T) {
	h, rows, err := readAll(StudentsTemplate())
	require.NoError(t, err)
	require.Contains(t, h, "Name")
	require.Contains(t, h, "Parent/Carer Name")
	require.Len(t, rows, 2)
	require.Equal(t, "Emma Johnson", rows[0].get("Name"))
}
