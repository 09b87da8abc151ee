package service

import (
	"context"

	"coursehub/internal/model"
	"coursehub/internal/repository"

	"github.com/google/uuid"
)

type LessonService interface {
	ListLessons(ctx context.Context, courseID int64) ([]model.Lesson, error)
	CreateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID int64, userID uuid.UUID) error
}

type lessonService struct {
	repo repository.LessonRepository
}

func NewLessonService(repo repository.LessonRepository) LessonService {
	return &lessonService{repo: repo}
}

func (s *lessonService) ListLessons(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	if err := requireID("courseId", courseID); err != nil {
		return nil, err
	}
	return s.repo.ListLessonsByCourseID(ctx, courseID)
}

func (s *lessonService) CreateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) (*model.Lesson, error) {
	if err := requireID("courseId", l.CourseID); err != nil {
		return nil, err
	}
	if err := requireText([2]string{"title", l.Title}, [2]string{"content", l.Content}); err != nil {
		return nil, err
	}
	if err := s.repo.CreateLesson(ctx, l, userID); err != nil {
		return nil, mapRepoErr(err)
	}
	return l, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) (*model.Lesson, error) {
	if err := requireID("id", l.ID); err != nil {
		return nil, err
	}
	if err := requireID("courseId", l.CourseID); err != nil {
		return nil, err
	}
	if err := requireText([2]string{"title", l.Title}, [2]string{"content", l.Content}); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLesson(ctx, l, userID); err != nil {
		return nil, mapRepoErr(err)
	}
	return l, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, lessonID int64, userID uuid.UUID) error {
	if err := requireID("id", lessonID); err != nil {
		return err
	}
	return mapRepoErr(s.repo.DeleteLesson(ctx, lessonID, userID))
}
