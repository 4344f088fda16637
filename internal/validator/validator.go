package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/model"
)

// Field constraints for the student entity.
const (
	NameMinLen  = 2
	NameMaxLen  = 100
	GradeMinLen = 1
	GradeMaxLen = 20
	AgeMin      = 5
	AgeMax      = 100
)

// validate is the shared instance used for syntax-level rules (email).
var validate = govalidator.New()

// FieldErrors reports validation failures as a map of field name to the
// list of problems found on that field. It satisfies the error interface
// so it can travel through the service layer like any other failure.
type FieldErrors struct {
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, problems := range e.Fields {
		parts = append(parts, field+": "+strings.Join(problems, "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *FieldErrors) add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], problem)
}

func (e *FieldErrors) orNil() *FieldErrors {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateCreate checks a full student payload. All fields are required;
// each present field is checked against its rules. On success it returns
// a well-typed Student ready for insertion.
func ValidateCreate(in model.StudentInput) (model.Student, *FieldErrors) {
	errs := &FieldErrors{}

	if in.Name == nil {
		errs.add("name", "name is required")
	} else {
		checkName(*in.Name, errs)
	}
	if in.Age == nil {
		errs.add("age", "age is required")
	} else {
		checkAge(*in.Age, errs)
	}
	if in.Grade == nil {
		errs.add("grade", "grade is required")
	} else {
		checkGrade(*in.Grade, errs)
	}
	if in.Email == nil {
		errs.add("email", "email is required")
	} else {
		checkEmail(*in.Email, errs)
	}

	if fe := errs.orNil(); fe != nil {
		return model.Student{}, fe
	}
	return model.Student{
		Name:  *in.Name,
		Age:   *in.Age,
		Grade: *in.Grade,
		Email: *in.Email,
	}, nil
}

// ValidatePatch checks a partial update payload. Only supplied fields are
// validated; absent fields stay nil in the resulting patch.
func ValidatePatch(in model.StudentInput) (model.StudentPatch, *FieldErrors) {
	errs := &FieldErrors{}

	if in.Name != nil {
		checkName(*in.Name, errs)
	}
	if in.Age != nil {
		checkAge(*in.Age, errs)
	}
	if in.Grade != nil {
		checkGrade(*in.Grade, errs)
	}
	if in.Email != nil {
		checkEmail(*in.Email, errs)
	}

	if fe := errs.orNil(); fe != nil {
		return model.StudentPatch{}, fe
	}
	return model.StudentPatch{
		Name:  in.Name,
		Age:   in.Age,
		Grade: in.Grade,
		Email: in.Email,
	}, nil
}

// checkName enforces length first, then the blank and digit rules.
// Length and digit failures are independent and reported together.
func checkName(name string, errs *FieldErrors) {
	if n := utf8.RuneCountInString(name); n < NameMinLen || n > NameMaxLen {
		errs.add("name", "name must be between 2 and 100 characters")
	}
	if strings.TrimSpace(name) == "" {
		errs.add("name", "name must not be blank")
	}
	if strings.ContainsFunc(name, unicode.IsDigit) {
		errs.add("name", "name must not contain digits")
	}
}

func checkAge(age int, errs *FieldErrors) {
	if age < AgeMin || age > AgeMax {
		errs.add("age", "age must be between 5 and 100")
	}
}

func checkGrade(grade string, errs *FieldErrors) {
	if n := utf8.RuneCountInString(grade); n < GradeMinLen || n > GradeMaxLen {
		errs.add("grade", "grade must be between 1 and 20 characters")
	}
}

func checkEmail(email string, errs *FieldErrors) {
	if err := validate.Var(email, "required,email"); err != nil {
		errs.add("email", "email must be a valid email address")
	}
}
