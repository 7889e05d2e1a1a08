package csvimport

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/models"
	"hamilton_tms/internal/profanity"
)

var studentRequiredColumns = []string{"Name", "Class", "Parent/Carer Name", "Parent/Carer Phone", "Address"}

// legacy column names kept for files produced against the old template.
var studentLegacyFallbacks = map[string]string{
	"Parent/Carer Name":  "Parent Name",
	"Parent/Carer Phone": "Parent Phone",
}

// stripClassPrefix normalizes "Class 3" to "3" so the same class uploaded
// both ways does not split in two.
func stripClassPrefix(className string) string {
	if len(className) >= 6 && strings.EqualFold(className[:6], "class ") {
		return strings.TrimSpace(className[6:])
	}
	return className
}

// ImportStudents processes a student CSV. Each row is validated, screened
// and created independently; duplicate identities and filter rejections
// are recorded as row errors while the batch continues. Nothing is rolled
// back.
func ImportStudents(engine *dispatch.Engine, content string) Result {
	var result Result

	h, rows, err := readAll(content)
	if err != nil {
		result.errorf("Error reading CSV file: %v", err)
		return result
	}

	var missing []string
	for _, col := range studentRequiredColumns {
		if _, ok := h[col]; ok {
			continue
		}
		if legacy, ok := studentLegacyFallbacks[col]; ok {
			if _, ok := h[legacy]; ok {
				continue
			}
		}
		missing = append(missing, col)
	}
	if len(missing) > 0 {
		result.errorf("Missing required columns: %s. Expected: %s",
			strings.Join(missing, ", "), strings.Join(studentRequiredColumns, ", "))
		return result
	}

	for i, r := range rows {
		rowNum := i + 2 // header is row 1

		name := r.get("Name")
		className := stripClassPrefix(r.get("Class"))
		parentName := r.get("Parent/Carer Name", "Parent Name")
		parentPhone := r.get("Parent/Carer Phone", "Parent Phone")
		address := r.get("Address")

		if name == "" && className == "" && parentName == "" && address == "" {
			continue
		}
		if name == "" || className == "" || parentName == "" || parentPhone == "" || address == "" {
			result.errorf("Row %d: Missing required fields", rowNum)
			continue
		}

		medicalNotes := r.get("Medical Notes")
		safeguarding := r.get("Safeguarding Notes")
		screened := []struct{ text, label string }{
			{name, "student name"},
			{className, "class name"},
			{parentName, "parent name"},
			{address, "address"},
			{medicalNotes, "medical notes"},
			{safeguarding, "safeguarding notes"},
		}
		rejected := false
		for _, f := range screened {
			if f.text == "" {
				continue
			}
			if ok, msg := profanity.Validate(f.text, f.label); !ok {
				result.errorf("Row %d: %s", rowNum, msg)
				rejected = true
				break
			}
		}
		if rejected {
			continue
		}

		student := &models.Student{
			Name:                      name,
			ClassName:                 className,
			Parent1Name:               parentName,
			Parent1Phone:              parentPhone,
			Parent2Name:               r.get("Parent/Carer 2 Name"),
			Parent2Phone:              r.get("Parent/Carer 2 Phone"),
			Address:                   address,
			MedicalNeeds:              truthy(r.get("Has Medical Needs")),
			RequiresPediatricFirstAid: truthy(r.get("Requires Pediatric First Aid")),
			MedicalNotes:              medicalNotes,
			Harness:                   r.get("Harness"),
			SafeguardingNotes:         safeguarding,
		}

		if err := engine.CreateStudent(student); err != nil {
			var dup *dispatch.DuplicateIdentityError
			if errors.As(err, &dup) {
				result.errorf("Row %d: %s", rowNum, dup.Error())
				continue
			}
			result.errorf("Row %d: Error processing student - %v", rowNum, err)
			continue
		}
		result.successf("Added student: %s (Class %s)", name, className)
	}

	logrus.WithFields(logrus.Fields{
		"imported": len(result.Success),
		"errors":   len(result.Errors),
	}).Info("students CSV processed")
	return result
}

// StudentsTemplate returns the downloadable CSV template for students.
func StudentsTemplate() string {
	return strings.Join([]string{
		"Name,Class,Parent/Carer Name,Parent/Carer Phone,Parent/Carer 2 Name,Parent/Carer 2 Phone,Address,Has Medical Needs,Requires Pediatric First Aid,Medical Notes,Harness,Safeguarding Notes",
		`Emma Johnson,3A,Sarah Johnson,01234567890,Michael Johnson,07987654321,"123 High Street, London, W1A 1AA",Yes,Yes,"Asthma, requires inhaler",Yes,`,
		`Oliver Smith,5B,Claire Smith,02076543210,,,"45 Victoria Road, Manchester, M1 2AB",No,No,,No,Dietary requirements - vegetarian only`,
	}, "\n") + "\n"
}
