package categorysvc

import (
	"context"
	"errors"

	"clothesrental/model"
	categoryrepo "clothesrental/repository/category"
)

type Service interface {
	Create(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r categoryrepo.Repo }

func New(r categoryrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("invalid payload")
	}
	return s.r.Create(ctx, name)
}

func (s *service) List(ctx context.Context) ([]model.Category, error) { return s.r.List(ctx) }

func (s *service) Update(ctx context.Context, id int64, name string) error {
	if name == "" {
		return errors.New("invalid payload")
	}
	return s.r.Update(ctx, id, name)
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.r.Delete(ctx, id) }
