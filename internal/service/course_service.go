package service

import (
	"context"

	"coursehub/internal/model"
	"coursehub/internal/repository"

	"github.com/google/uuid"
)

// CourseListLimit caps the public course listing.
const CourseListLimit = 100

// CourseService defines the interface for course operations
type CourseService interface {
	ListCourses(ctx context.Context) ([]model.CourseWithOwner, error)
	// CreateCourse inserts c owned by c.UserID
	CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	// UpdateCourse returns ErrNotFound or ErrForbidden when c.UserID does not own c.ID
	UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	DeleteCourse(ctx context.Context, courseID int64, userID uuid.UUID) error
}

// courseService is the implementation of CourseService
type courseService struct {
	repo repository.CourseRepository
}

// NewCourseService creates a new CourseService
func NewCourseService(repo repository.CourseRepository) CourseService {
	return &courseService{repo: repo}
}

func (s *courseService) ListCourses(ctx context.Context) ([]model.CourseWithOwner, error) {
	return s.repo.ListCourses(ctx, CourseListLimit)
}

func (s *courseService) CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	if err := requireText([2]string{"title", c.Title}); err != nil {
		return nil, err
	}
	if c.UserID == uuid.Nil {
		return nil, ErrForbidden
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	if err := requireID("id", c.ID); err != nil {
		return nil, err
	}
	if err := requireText([2]string{"title", c.Title}); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, courseID int64, userID uuid.UUID) error {
	if err := requireID("id", courseID); err != nil {
		return err
	}
	return mapRepoErr(s.repo.DeleteCourse(ctx, courseID, userID))
}
