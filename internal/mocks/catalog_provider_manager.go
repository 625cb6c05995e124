package mocks

import (
	"context"

	"cardbinder.app/internal/ports"
	"github.com/stretchr/testify/mock"
)

// CatalogProviderManager is a testify mock of ports.CatalogProviderManager
type CatalogProviderManager struct {
	mock.Mock
}

// NewCatalogProviderManager creates a mock whose expectations are asserted when the test ends
func NewCatalogProviderManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *CatalogProviderManager {
	m := &CatalogProviderManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CatalogProviderManager) ListSets(ctx context.Context, lang string) ([]ports.SetData, error) {
	args := m.Called(ctx, lang)
	sets, _ := args.Get(0).([]ports.SetData)
	return sets, args.Error(1)
}

func (m *CatalogProviderManager) GetSet(ctx context.Context, lang, setID string) (*ports.SetData, error) {
	args := m.Called(ctx, lang, setID)
	set, _ := args.Get(0).(*ports.SetData)
	return set, args.Error(1)
}

func (m *CatalogProviderManager) ListCards(ctx context.Context, lang string, query ports.CardQuery) ([]ports.CardData, error) {
	args := m.Called(ctx, lang, query)
	cards, _ := args.Get(0).([]ports.CardData)
	return cards, args.Error(1)
}

func (m *CatalogProviderManager) GetProviderInfo() map[string]interface{} {
	args := m.Called()
	info, _ := args.Get(0).(map[string]interface{})
	return info
}
