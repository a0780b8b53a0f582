package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type partyService struct {
	pool *pgxpool.Pool
}

// NewPartyService constructs a PartyService backed by PostgreSQL.
func NewPartyService(pool *pgxpool.Pool) PartyService {
	return &partyService{pool: pool}
}

// party is the shared row shape of the customers and vendors tables.
type party struct {
	Customer
}

func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// createParty inserts into the named table ("customers" or "vendors").
func (s *partyService) createParty(ctx context.Context, table string, ownerID int, in PartyInput) (*party, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &party{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO `+table+` (user_id, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, email, phone, address, created_at`,
		ownerID, in.Name, toPtr(in.Email), toPtr(in.Phone), toPtr(in.Address),
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create %s record: %w", table, err)
	}
	return p, nil
}

func (s *partyService) getParty(ctx context.Context, table string, ownerID, id int) (*party, error) {
	p := &party{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone, address, created_at
		FROM `+table+` WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s %d: %w", table, id, err)
	}
	if p.UserID != ownerID {
		return nil, fmt.Errorf("%s %d: %w", table, id, ErrForbidden)
	}
	return p, nil
}

func (s *partyService) listParties(ctx context.Context, table string, ownerID int) ([]party, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, email, phone, address, created_at
		FROM `+table+` WHERE user_id = $1 ORDER BY name`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var parties []party
	for rows.Next() {
		var p party
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (s *partyService) updateParty(ctx context.Context, table string, ownerID, id int, in PartyInput) (*party, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.getParty(ctx, table, ownerID, id); err != nil {
		return nil, err
	}
	p := &party{}
	err := s.pool.QueryRow(ctx, `
		UPDATE `+table+` SET name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, name, email, phone, address, created_at`,
		in.Name, toPtr(in.Email), toPtr(in.Phone), toPtr(in.Address), id, ownerID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", table, id, err)
	}
	return p, nil
}

func (s *partyService) deleteParty(ctx context.Context, table string, ownerID, id int) error {
	if _, err := s.getParty(ctx, table, ownerID, id); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM "+table+" WHERE id = $1 AND user_id = $2", id, ownerID,
	); err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	return nil
}

func (s *partyService) CreateCustomer(ctx context.Context, ownerID int, in PartyInput) (*Customer, error) {
	p, err := s.createParty(ctx, "customers", ownerID, in)
	if err != nil {
		return nil, err
	}
	return &p.Customer, nil
}

func (s *partyService) GetCustomer(ctx context.Context, ownerID, customerID int) (*Customer, error) {
	p, err := s.getParty(ctx, "customers", ownerID, customerID)
	if err != nil {
		return nil, err
	}
	return &p.Customer, nil
}

func (s *partyService) ListCustomers(ctx context.Context, ownerID int) ([]Customer, error) {
	parties, err := s.listParties(ctx, "customers", ownerID)
	if err != nil {
		return nil, err
	}
	customers := make([]Customer, len(parties))
	for i, p := range parties {
		customers[i] = p.Customer
	}
	return customers, nil
}

func (s *partyService) UpdateCustomer(ctx context.Context, ownerID, customerID int, in PartyInput) (*Customer, error) {
	p, err := s.updateParty(ctx, "customers", ownerID, customerID, in)
	if err != nil {
		return nil, err
	}
	return &p.Customer, nil
}

func (s *partyService) DeleteCustomer(ctx context.Context, ownerID, customerID int) error {
	return s.deleteParty(ctx, "customers", ownerID, customerID)
}

func (s *partyService) CreateVendor(ctx context.Context, ownerID int, in PartyInput) (*Vendor, error) {
	p, err := s.createParty(ctx, "vendors", ownerID, in)
	if err != nil {
		return nil, err
	}
	return customerToVendor(&p.Customer), nil
}

func (s *partyService) GetVendor(ctx context.Context, ownerID, vendorID int) (*Vendor, error) {
	p, err := s.getParty(ctx, "vendors", ownerID, vendorID)
	if err != nil {
		return nil, err
	}
	return customerToVendor(&p.Customer), nil
}

func (s *partyService) ListVendors(ctx context.Context, ownerID int) ([]Vendor, error) {
	parties, err := s.listParties(ctx, "vendors", ownerID)
	if err != nil {
		return nil, err
	}
	vendors := make([]Vendor, len(parties))
	for i, p := range parties {
		vendors[i] = *customerToVendor(&p.Customer)
	}
	return vendors, nil
}

func (s *partyService) UpdateVendor(ctx context.Context, ownerID, vendorID int, in PartyInput) (*Vendor, error) {
	p, err := s.updateParty(ctx, "vendors", ownerID, vendorID, in)
	if err != nil {
		return nil, err
	}
	return customerToVendor(&p.Customer), nil
}

func (s *partyService) DeleteVendor(ctx context.Context, ownerID, vendorID int) error {
	return s.deleteParty(ctx, "vendors", ownerID, vendorID)
}

func customerToVendor(c *Customer) *Vendor {
	return &Vendor{
		ID: c.ID, UserID: c.UserID, Name: c.Name,
		Email: c.Email, Phone: c.Phone, Address: c.Address,
		CreatedAt: c.CreatedAt,
	}
}
