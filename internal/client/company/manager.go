package company

import (
	"context"
	"fmt"
	"time"
)

// Manager applies lifecycle changes to companies through a Repository.
type Manager struct {
	repo Repository
	now  func() time.Time
}

// NewManager constructs a Manager.
func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Find loads a company; a missing record yields shared.ErrNotFound.
func (m *Manager) Find(ctx context.Context, id int64) (Company, error) {
	return m.repo.Get(ctx, id)
}

// Create persists c and assigns its ID and timestamps.
func (m *Manager) Create(ctx context.Context, c *Company) error {
	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now
	id, err := m.repo.Create(ctx, *c)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	c.ID = id
	return nil
}

// Update persists the changes made to an existing company.
func (m *Manager) Update(ctx context.Context, c *Company) error {
	c.UpdatedAt = m.now()
	if err := m.repo.Update(ctx, *c); err != nil {
		return fmt.Errorf("update company %d: %w", c.ID, err)
	}
	return nil
}

// Delete removes an existing company.
func (m *Manager) Delete(ctx context.Context, c Company) error {
	if err := m.repo.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete company %d: %w", c.ID, err)
	}
	return nil
}
