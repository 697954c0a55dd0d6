package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rdmelo/perdesk/internal/dashboard/db"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/events"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"github.com/rdmelo/perdesk/internal/dashboard/store"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const auditTopic = "dashboard-audit-test"

// IntegrationTestSuite exercises the store layer against real Postgres and
// Kafka instances. Enable it with PERDESK_INTEGRATION=1.
type IntegrationTestSuite struct {
	suite.Suite
	dbRepo      *db.Repository
	kafkaReader *kafka.Reader
	producer    *events.Producer
	logger      *zap.Logger
	testTimeout time.Duration
}

func TestIntegrationSuite(t *testing.T) {
	if os.Getenv("PERDESK_INTEGRATION") == "" {
		t.Skip("Skipping integration tests; set PERDESK_INTEGRATION to run")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.logger = zap.NewNop()
	s.testTimeout = 20 * time.Second

	var dbErr error
	s.dbRepo, dbErr = initializeDBWithRetry()
	if dbErr != nil {
		s.T().Fatal("Database initialization failed:", dbErr)
	}
}

func initializeDBWithRetry() (*db.Repository, error) {
	cfg := &db.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
	}

	var repo *db.Repository
	var err error

	err = backoff.Retry(func() error {
		repo, err = db.NewRepository(cfg)
		return err
	}, backoff.NewExponentialBackOff())

	return repo, err
}

func initializeKafkaWithRetry(topic string) (*events.Producer, *kafka.Reader, error) {
	kafkaBrokers := []string{"localhost:9092"}
	var producer *events.Producer
	var reader *kafka.Reader
	var err error

	err = backoff.Retry(func() error {
		producer, err = events.NewProducer(kafkaBrokers, zap.NewNop(), topic)
		if err != nil || producer == nil {
			return fmt.Errorf("failed to create Kafka producer: %v", err)
		}
		return nil
	}, backoff.NewExponentialBackOff())

	if err != nil {
		return nil, nil, fmt.Errorf("Kafka producer initialization failed: %w", err)
	}

	// Verify the topic exists before consuming from it.
	err = backoff.Retry(func() error {
		conn, err := kafka.Dial("tcp", kafkaBrokers[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions(topic)
		if err != nil || len(partitions) == 0 {
			return fmt.Errorf("topic %s not found", topic)
		}
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))

	if err != nil {
		return nil, nil, fmt.Errorf("Kafka topic check failed: %w", err)
	}

	reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkaBrokers,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return producer, reader, nil
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
	if s.kafkaReader != nil {
		_ = s.kafkaReader.Close()
	}
	if s.dbRepo != nil {
		_ = s.dbRepo.Close()
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	if s.dbRepo == nil {
		s.T().Fatal("Database connection not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	if err := s.dbRepo.Exec(ctx, "TRUNCATE TABLE clients, perd_comps, activity_logs CASCADE"); err != nil {
		s.T().Fatal("Failed to clean database:", err)
	}
}

func (s *IntegrationTestSuite) setupKafka() {
	var kafkaErr error
	s.producer, s.kafkaReader, kafkaErr = initializeKafkaWithRetry(auditTopic)
	if kafkaErr != nil {
		s.T().Fatal("Kafka initialization failed:", kafkaErr)
	}
}

func newIntegrationClient() *models.Client {
	return &models.Client{
		CNPJ:         fmt.Sprintf("%014d", time.Now().UnixNano()%1e14),
		RazaoSocial:  "Empresa Integracao LTDA",
		NomeFantasia: "Empresa Integracao",
		TipoEmpresa:  models.TipoLTDA,
	}
}

func (s *IntegrationTestSuite) TestClientCreate() {
	s.setupKafka()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	clients := store.NewClientStore(s.dbRepo.Clients(), s.producer, s.logger)
	created, err := clients.Create(ctx, newIntegrationClient())
	if err != nil {
		s.T().Fatal("Create failed:", err)
	}

	assert.NotEqual(s.T(), uuid.Nil, created.ID)
	s.verifyKafkaEvent(ctx, events.ClientCreated, created.ID)
}

func (s *IntegrationTestSuite) TestClientUpdate() {
	s.setupKafka()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	client := newIntegrationClient()
	client.ID = uuid.New()
	if err := s.dbRepo.Clients().Insert(ctx, client); err != nil {
		s.T().Fatal("Insert failed:", err)
	}

	clients := store.NewClientStore(s.dbRepo.Clients(), s.producer, s.logger)
	newName := "Empresa Renomeada LTDA"
	updated, err := clients.Update(ctx, &models.ClientUpdate{
		ID:          client.ID,
		RazaoSocial: &newName,
	})
	if err != nil {
		s.T().Fatal("Update failed:", err)
	}

	assert.Equal(s.T(), newName, updated.RazaoSocial)
	time.Sleep(2 * time.Second)
	s.verifyKafkaEvent(ctx, events.ClientUpdated, client.ID)
}

func (s *IntegrationTestSuite) TestClientDelete() {
	s.setupKafka()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	client := newIntegrationClient()
	client.ID = uuid.New()
	if err := s.dbRepo.Clients().Insert(ctx, client); err != nil {
		s.T().Fatal("Insert failed:", err)
	}

	clients := store.NewClientStore(s.dbRepo.Clients(), s.producer, s.logger)
	if err := clients.Delete(ctx, client.ID); err != nil {
		s.T().Fatal("Delete failed:", err)
	}

	_, err := s.dbRepo.Clients().Get(ctx, client.ID)
	assert.ErrorIs(s.T(), err, e.ErrNotFound)
	time.Sleep(2 * time.Second)
	s.verifyKafkaEvent(ctx, events.ClientDeleted, client.ID)
}

// TestAuditPipeline runs the full loop: a mutation produces an event, the
// consumer picks it up and the recorder lands it in the activity log.
func (s *IntegrationTestSuite) TestAuditPipeline() {
	s.setupKafka()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout*3)
	defer cancel()

	recorder := events.NewAuditRecorder(s.dbRepo.Activities(), s.logger)
	consumer := events.NewConsumer([]string{"localhost:9092"}, "perdesk-audit-test", auditTopic, s.logger)
	consumer.RegisterHandler(recorder.Handle)
	consumer.Start(ctx)
	defer consumer.Close()

	clients := store.NewClientStore(s.dbRepo.Clients(), s.producer, s.logger)
	created, err := clients.Create(ctx, newIntegrationClient())
	if err != nil {
		s.T().Fatal("Create failed:", err)
	}

	err = backoff.Retry(func() error {
		entries, _, err := s.dbRepo.Activities().ListActivities(ctx, 0, 10)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.EntityID != nil && *entry.EntityID == created.ID {
				return nil
			}
		}
		return fmt.Errorf("activity entry for %s not found yet", created.ID)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10))
	assert.NoError(s.T(), err, "mutation should land in the activity log")
}

func (s *IntegrationTestSuite) verifyKafkaEvent(ctx context.Context, eventType events.EventType, entityID uuid.UUID) {
	event := s.consumeKafkaEvent(ctx, eventType, entityID)
	assert.Equal(s.T(), entityID, event.Entity.ID, "Kafka message entity ID mismatch")
}

func (s *IntegrationTestSuite) consumeKafkaEvent(ctx context.Context, eventType events.EventType, entityID uuid.UUID) events.Event {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	maxRetries := 200
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			s.T().Fatalf("Timeout: No %s event received after %d attempts", eventType, attempts)
			return events.Event{}
		default:
			if attempts >= maxRetries {
				s.T().Fatalf("Max retry attempts reached for %s", eventType)
				return events.Event{}
			}
			msg, err := s.kafkaReader.ReadMessage(ctx)
			if err != nil {
				s.T().Logf("Kafka read attempt %d failed: %v", attempts, err)
				attempts++
				time.Sleep(1 * time.Second)
				continue
			}
			if string(msg.Key) != entityID.String() {
				attempts++
				continue
			}
			var event events.Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				s.T().Fatalf("Failed to unmarshal Kafka message: %v", err)
			}
			if event.Type != eventType {
				attempts++
				continue
			}
			return event
		}
	}
}
