package testutil

import (
	"context"
	"time"

	"github.com/clubpulse/clubpulse/internal/cache"
	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	"github.com/clubpulse/clubpulse/internal/domain/partner"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/clubpulse/clubpulse/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubRepo         subscriber.Repository
	PlanRepo        plan.Repository
	PartnerRepo     partner.Repository
	CashbackRepo    cashback.Repository
	TransactionRepo settlement.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      postgres.IClient
	cache   cache.Cache
	gateway *MockGatewayClient
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Cache: config.CacheConfig{
			Enabled: true,
		},
	}
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubRepo:         NewInMemorySubscriberStore(),
		PlanRepo:        NewInMemoryPlanStore(),
		PartnerRepo:     NewInMemoryPartnerStore(),
		CashbackRepo:    NewInMemoryCashbackStore(),
		TransactionRepo: NewInMemoryTransactionStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache(s.config)
	s.gateway = NewMockGatewayClient()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.SubRepo.(*InMemorySubscriberStore).Clear()
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.PartnerRepo.(*InMemoryPartnerStore).Clear()
	s.stores.CashbackRepo.(*InMemoryCashbackStore).Clear()
	s.stores.TransactionRepo.(*InMemoryTransactionStore).Clear()
	s.cache.Flush(s.ctx)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetGatewayClient returns the recording gateway client
func (s *BaseServiceTestSuite) GetGatewayClient() *MockGatewayClient {
	return s.gateway
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
