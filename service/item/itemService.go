package itemsvc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"clothesrental/model"
	itemrepo "clothesrental/repository/item"
	storagerepo "clothesrental/repository/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("item not found")

type CreateReq struct {
	Name        string
	OwnerName   string
	RentalPrice int64
	Description string
	CategoryID  *int64
}

type Service interface {
	Create(ctx context.Context, req CreateReq) (int64, error)
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id int64) error

	// AttachImage uploads an item photo and records its URL.
	AttachImage(ctx context.Context, id int64, contentType string, body io.Reader) (string, error)
}

type service struct {
	r       itemrepo.Repo
	storage storagerepo.Repo
}

func New(r itemrepo.Repo, st storagerepo.Repo) Service {
	return &service{r: r, storage: st}
}

func (s *service) Create(ctx context.Context, req CreateReq) (int64, error) {
	if req.Name == "" || req.RentalPrice <= 0 {
		return 0, errors.New("invalid payload")
	}
	return s.r.Create(ctx, &model.Item{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		RentalPrice: req.RentalPrice,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
}

func (s *service) List(ctx context.Context) ([]model.Item, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, it *model.Item) error {
	if it.Name == "" || it.RentalPrice <= 0 {
		return errors.New("invalid payload")
	}
	return s.r.Update(ctx, it)
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.r.Delete(ctx, id) }

func (s *service) AttachImage(ctx context.Context, id int64, contentType string, body io.Reader) (string, error) {
	it, err := s.Detail(ctx, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("items/%d/%s", id, uuid.NewString())
	url, err := s.storage.Store(ctx, key, contentType, body)
	if err != nil {
		return "", err
	}
	it.ImageURL = &url
	if err := s.r.Update(ctx, it); err != nil {
		// Keep storage consistent with the catalog row.
		_ = s.storage.Delete(ctx, key)
		return "", err
	}
	return url, nil
}
