package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the storage contract for projects and their members.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, project *Project) error

	AddMember(ctx context.Context, member *ProjectMember) error
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]ProjectMember, error)
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed project repository and migrates its tables.
func NewRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&Project{}, &ProjectMember{}); err != nil {
		return nil, err
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Project, error) {
	var result []Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&result).Error
	return result, err
}

func (r *postgresRepository) Update(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *postgresRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *postgresRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]ProjectMember, error) {
	var members []ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
