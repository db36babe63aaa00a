package service

import (
	"context"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/hooks"
)

// rentalFields are the fields the rental search matches.
func rentalFields(r *motoadmin.Rental) []string {
	return []string{r.UserEmail, r.MotorcycleName, r.MotorcycleCompany}
}

// ListRentals fetches every rental and filters and paginates locally.
func (s *Service) ListRentals(ctx context.Context, page int, search string) (*Page[*motoadmin.Rental], error) {
	all, err := s.api.ListRentals(ctx)
	if err != nil {
		return nil, err
	}
	search = ValidateSearch(search)
	p := Paginate(Filter(all, search, rentalFields), ValidatePage(page), s.config.RentalPageSize)
	p.Search = search
	return p, nil
}

// ReturnMotorcycle closes a rental. label names the motorcycle for the
// audit entry and may be empty.
func (s *Service) ReturnMotorcycle(ctx context.Context, id, label string) (*motoadmin.Rental, error) {
	r, err := s.api.ReturnMotorcycle(ctx, id)
	if label == "" && r != nil {
		label = r.MotorcycleName
	}
	s.mutated(ctx, hooks.ActionReturnMotorcycle, subject(label, id), err)
	return r, err
}
