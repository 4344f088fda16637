package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/model"
)

var (
	// ErrNotFound is returned when no student row matches the given id.
	ErrNotFound = errors.New("student not found")
	// ErrDuplicateEmail is returned when a student with the same email
	// already exists, either from the pre-check or from the unique
	// constraint rejecting an insert that raced past the pre-check.
	ErrDuplicateEmail = errors.New("student with this email already exists")
	// ErrIntegrity is returned for storage constraint violations that are
	// not otherwise classified.
	ErrIntegrity = errors.New("integrity constraint violation")
)

// emailUniqueConstraint is the backstop constraint on students.email.
const emailUniqueConstraint = "students_email_key"

const studentColumns = "id, name, age, grade, email, created_at, updated_at"

// StudentRepository is the only component allowed to touch the students table.
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error)
	Delete(ctx context.Context, id int) error
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a StudentRepository backed by a pgx pool.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

// Create inserts a new student inside a transaction. The email pre-check and
// the insert commit together; the unique constraint remains as a backstop
// against a concurrent insert between the two.
func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	taken, err := emailTaken(ctx, tx, student.Email, 0)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrDuplicateEmail
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO students (name, age, grade, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		student.Name, student.Age, student.Grade, student.Email,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return classifyPgError(err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a student by id.
func (r *studentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Age, &s.Grade, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all students in insertion order.
func (r *studentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Age, &s.Grade, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Update applies a partial patch inside a transaction. The current row is
// locked first so the existence check, the email uniqueness check and the
// write commit as one unit. Only fields present in the patch are written;
// updated_at is always refreshed.
func (r *studentRepository) Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	current := &model.Student{}
	err = tx.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current.ID, &current.Name, &current.Age, &current.Grade, &current.Email, &current.CreatedAt, &current.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != current.Email {
		taken, err := emailTaken(ctx, tx, *patch.Email, id)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	sets, args := buildPatchSets(patch)
	args = append(args, id)
	query := `UPDATE students SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + studentColumns

	updated := &model.Student{}
	err = tx.QueryRow(ctx, query, args...).
		Scan(&updated.ID, &updated.Name, &updated.Age, &updated.Grade, &updated.Email, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a student permanently.
func (r *studentRepository) Delete(ctx context.Context, id int) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return classifyPgError(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// emailTaken reports whether another row (excluding excludeID) already uses
// the email. Matching is case-sensitive, exactly as stored.
func emailTaken(ctx context.Context, tx pgx.Tx, email string, excludeID int) (bool, error) {
	var one int
	err := tx.QueryRow(ctx,
		`SELECT 1 FROM students WHERE email = $1 AND id <> $2`, email, excludeID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// buildPatchSets assembles the SET clauses for the fields present in the
// patch. updated_at is always included, so an empty patch still refreshes it.
func buildPatchSets(patch model.StudentPatch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.Grade != nil {
		add("grade", *patch.Grade)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	return sets, args
}

// classifyPgError maps PostgreSQL constraint violations onto the domain
// error set. A unique violation on the email backstop constraint is a
// duplicate; any other integrity-class error (code 23xxx) stays generic.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == emailUniqueConstraint {
			return ErrDuplicateEmail
		}
		if strings.HasPrefix(pgErr.Code, "23") {
			return ErrIntegrity
		}
	}
	return err
}
