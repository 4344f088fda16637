package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/model"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/repository"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/validator"
)

// StudentService orchestrates validation and persistence for the student
// entity. Handlers call it and map its errors onto the response envelope.
type StudentService interface {
	Create(ctx context.Context, in model.StudentInput) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Get(ctx context.Context, id int) (*model.Student, error)
	Update(ctx context.Context, id int, in model.StudentInput) (*model.Student, error)
	Delete(ctx context.Context, id int) error
}

type studentService struct {
	repo repository.StudentRepository
	log  zerolog.Logger
}

// NewStudentService creates a StudentService.
func NewStudentService(repo repository.StudentRepository, log zerolog.Logger) StudentService {
	return &studentService{
		repo: repo,
		log:  log.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, in model.StudentInput) (*model.Student, error) {
	student, fieldErrs := validator.ValidateCreate(in)
	if fieldErrs != nil {
		s.log.Info().Interface("fields", fieldErrs.Fields).Msg("Create rejected by validation")
		return nil, fieldErrs
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		s.logRepoError(err, "create student")
		return nil, err
	}

	s.log.Info().Int("id", student.ID).Msg("Student created")
	return &student, nil
}

func (s *studentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list students")
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	s.log.Info().Int("count", len(students)).Msg("Fetched all students")
	return students, nil
}

func (s *studentService) Get(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logRepoError(err, "get student")
		return nil, err
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id int, in model.StudentInput) (*model.Student, error) {
	patch, fieldErrs := validator.ValidatePatch(in)
	if fieldErrs != nil {
		s.log.Info().Int("id", id).Interface("fields", fieldErrs.Fields).Msg("Update rejected by validation")
		return nil, fieldErrs
	}

	student, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logRepoError(err, "update student")
		return nil, err
	}

	s.log.Info().Int("id", student.ID).Msg("Student updated")
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logRepoError(err, "delete student")
		return err
	}
	s.log.Info().Int("id", id).Msg("Student deleted")
	return nil
}

// logRepoError logs domain misses at warn and infrastructure failures at
// error. Domain errors are expected control flow, not bugs.
func (s *studentService) logRepoError(err error, op string) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrDuplicateEmail):
		s.log.Warn().Err(err).Str("op", op).Msg("Domain error")
	default:
		s.log.Error().Err(err).Str("op", op).Msg("Storage error")
	}
}
