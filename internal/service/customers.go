package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
)

func remoteSearchExpressions(q domain.CustomerSearchQuery) []string {
	expressions := make([]string, 0, 4)
	if q.Email != "" {
		expressions = append(expressions, "email:"+q.Email)
	}
	if q.Phone != "" {
		expressions = append(expressions, "phone:"+q.Phone)
	}
	if q.Name != "" {
		expressions = append(expressions, q.Name)
	}
	if q.FirstName != "" {
		expressions = append(expressions, q.FirstName)
	}
	if q.LastName != "" {
		expressions = append(expressions, q.LastName)
	}
	return expressions
}

// SearchCustomers looks in the local mirror first and only falls back to the
// remote customer search when nothing matches. Remote hits are persisted so
// the next lookup is local.
func (s *Service) SearchCustomers(ctx context.Context, query domain.CustomerSearchQuery) (domain.CustomerSearchResult, error) {
	if query.Empty() {
		return domain.CustomerSearchResult{}, fmt.Errorf("%w: at least one search selector is required", store.ErrInvalidInput)
	}

	local, err := s.repo.SearchCustomers(ctx, query)
	if err != nil {
		return domain.CustomerSearchResult{}, err
	}
	if len(local) > 0 {
		return domain.CustomerSearchResult{Source: "local", Customers: local}, nil
	}

	seen := make(map[int64]struct{})
	matches := make([]domain.Customer, 0, 4)
	for _, expr := range remoteSearchExpressions(query) {
		remote, err := s.remote.SearchCustomers(ctx, expr)
		if err != nil {
			return domain.CustomerSearchResult{}, fmt.Errorf("remote customer search: %w", err)
		}
		for _, rc := range remote {
			if rc.ID == 0 {
				continue
			}
			if _, dup := seen[rc.ID]; dup {
				continue
			}
			seen[rc.ID] = struct{}{}

			customer := customerFromRemote(rc)
			if _, err := s.repo.UpsertCustomer(ctx, customer); err != nil {
				log.Printf("[service] WARN: failed to persist searched customer shopify_id=%d: %v", rc.ID, err)
			}
			if stored, err := s.repo.GetCustomerByExternalID(ctx, rc.ID); err == nil {
				customer = *stored
			}
			matches = append(matches, customer)
		}
	}

	return domain.CustomerSearchResult{Source: "shopify", Customers: matches}, nil
}

func customerInputFromRequest(firstName, lastName, email, phone string, addr *domain.NewCustomerAddress) shopify.CustomerInput {
	in := shopify.CustomerInput{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
	}
	if addr != nil {
		in.Addresses = []shopify.Address{{
			Address1: addr.Address1,
			Address2: addr.Address2,
			City:     addr.City,
			Province: addr.Province,
			Country:  addr.Country,
			Zip:      addr.Zip,
		}}
	}
	return in
}

// CreateCustomer creates the customer remotely first, then mirrors it. The
// remote side owns customer identity; a local-only customer would never
// survive the next sync.
func (s *Service) CreateCustomer(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	if existing, err := s.repo.GetCustomerByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: customer with email %s already exists", store.ErrInvalidInput, req.Email)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	created, err := s.remote.CreateCustomer(ctx, customerInputFromRequest(req.FirstName, req.LastName, req.Email, req.Phone, req.Address))
	if err != nil {
		return nil, fmt.Errorf("create remote customer: %w", err)
	}

	local, err := s.repo.CreateCustomer(ctx, customerFromRemote(*created))
	if err != nil {
		return nil, fmt.Errorf("persist customer: %w", err)
	}
	return local, nil
}
