package service

import (
	"context"
	"errors"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/hooks"
)

// ListMotorcycles returns one page of motorcycles matching search (name,
// brand or status, matched by the API). A page past the end is clamped to
// the last page.
func (s *Service) ListMotorcycles(ctx context.Context, page int, search string) (*Page[*motoadmin.Motorcycle], error) {
	params := motoadmin.ListParams{
		Page:   ValidatePage(page),
		Limit:  s.config.PageSize,
		Search: ValidateSearch(search),
	}
	result, err := s.api.ListMotorcycles(ctx, params)
	if err != nil {
		return nil, err
	}
	if result.TotalPages > 0 && params.Page > result.TotalPages {
		params.Page = result.TotalPages
		if result, err = s.api.ListMotorcycles(ctx, params); err != nil {
			return nil, err
		}
	}
	return serverPage(result.Motorcycles, params, result.TotalPages), nil
}

// AddMotorcycle creates a motorcycle.
func (s *Service) AddMotorcycle(ctx context.Context, in *motoadmin.MotorcycleInput) (*motoadmin.Motorcycle, error) {
	m, err := s.api.AddMotorcycle(ctx, in)
	s.reportForm(ctx, hooks.ActionAddMotorcycle, in.Name, err)
	return m, err
}

// UpdateMotorcycle replaces a motorcycle's fields.
func (s *Service) UpdateMotorcycle(ctx context.Context, id string, in *motoadmin.MotorcycleInput) (*motoadmin.Motorcycle, error) {
	m, err := s.api.UpdateMotorcycle(ctx, id, in)
	s.reportForm(ctx, hooks.ActionUpdateMotorcycle, in.Name, err)
	return m, err
}

// DeleteMotorcycle removes a motorcycle. name labels the audit entry and
// may be empty.
func (s *Service) DeleteMotorcycle(ctx context.Context, id, name string) error {
	err := s.api.DeleteMotorcycle(ctx, id)
	s.mutated(ctx, hooks.ActionDeleteMotorcycle, subject(name, id), err)
	return err
}

// reportForm reports a form submission unless the form never reached the API.
func (s *Service) reportForm(ctx context.Context, action, label string, err error) {
	var valErr *motoadmin.ValidationError
	if errors.As(err, &valErr) {
		return
	}
	s.mutated(ctx, action, label, err)
}

// serverPage wraps a page the API already cut.
func serverPage[T any](items []T, params motoadmin.ListParams, totalPages int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       ClampPage(params.Page, totalPages),
		TotalPages: totalPages,
		PageSize:   params.Limit,
		Search:     params.Search,
		TotalCount: -1,
	}
}

func subject(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
