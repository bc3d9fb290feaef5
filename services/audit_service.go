package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const auditCollection = "audit_logs"

// Audit actions
const (
	AuditCreate       = "create"
	AuditUpdate       = "update"
	AuditDelete       = "delete"
	AuditStatusChange = "status_change"
	AuditLogin        = "login"
	AuditSweep        = "stale_sweep"
	AuditExport       = "export"
)

// AuditRecord is one admin action as returned by the audit endpoint
type AuditRecord struct {
	ID        string                 `json:"id" bson:"-"`
	AdminID   *uint                  `json:"admin_id" bson:"admin_id,omitempty"`
	Action    string                 `json:"action" bson:"action"`
	Entity    string                 `json:"entity" bson:"entity"`
	EntityID  string                 `json:"entity_id" bson:"entity_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}

// AuditFilter narrows List; zero fields match everything
type AuditFilter struct {
	Entity   string
	EntityID string
	Limit    int
}

// AuditService stores the admin audit trail
type AuditService interface {
	Record(ctx context.Context, rec AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)
}

// MongoAuditService keeps the audit trail in a MongoDB collection
type MongoAuditService struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// GormAuditService keeps the audit trail in the audit_logs table. Used when MONGODB_URI is unset.
type GormAuditService struct {
	db *gorm.DB
}

var auditServiceInstance AuditService

// InitAuditService connects to MongoDB when uri is set and falls back to the relational table
func InitAuditService(ctx context.Context, uri, database string, db *gorm.DB) (AuditService, error) {
	if uri == "" {
		auditServiceInstance = &GormAuditService{db: db}
		return auditServiceInstance, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	auditServiceInstance = &MongoAuditService{
		client:     client,
		collection: client.Database(database).Collection(auditCollection),
	}
	return auditServiceInstance, nil
}

// GetAuditService returns the audit instance, defaulting to the relational store
func GetAuditService() AuditService {
	if auditServiceInstance == nil {
		return &GormAuditService{}
	}
	return auditServiceInstance
}

// SetAuditService sets the audit instance (primarily for testing)
func SetAuditService(service AuditService) {
	auditServiceInstance = service
}

func auditLimit(n int) int {
	if n <= 0 || n > 500 {
		return 100
	}
	return n
}

func (s *MongoAuditService) Record(ctx context.Context, rec AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

func (s *MongoAuditService) List(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	q := bson.M{}
	if filter.Entity != "" {
		q["entity"] = filter.Entity
	}
	if filter.EntityID != "" {
		q["entity_id"] = filter.EntityID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(auditLimit(filter.Limit)))

	cursor, err := s.collection.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []AuditRecord{}
	for cursor.Next(ctx) {
		var doc struct {
			ID          primitive.ObjectID `bson:"_id"`
			AuditRecord `bson:",inline"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode audit record: %w", err)
		}
		rec := doc.AuditRecord
		rec.ID = doc.ID.Hex()
		records = append(records, rec)
	}
	return records, cursor.Err()
}

// Close disconnects the Mongo client
func (s *MongoAuditService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *GormAuditService) conn() *gorm.DB {
	if s.db != nil {
		return s.db
	}
	return config.GetDB()
}

func (s *GormAuditService) Record(ctx context.Context, rec AuditRecord) error {
	var metadata string
	if len(rec.Metadata) > 0 {
		raw, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = string(raw)
	}

	row := models.AuditLog{
		AdminID:  rec.AdminID,
		Action:   rec.Action,
		Entity:   rec.Entity,
		EntityID: rec.EntityID,
		Metadata: metadata,
	}
	if err := s.conn().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

func (s *GormAuditService) List(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	q := s.conn().WithContext(ctx).Order("created_at DESC, id DESC").Limit(auditLimit(filter.Limit))
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}

	var rows []models.AuditLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}

	records := make([]AuditRecord, 0, len(rows))
	for _, row := range rows {
		rec := AuditRecord{
			ID:        strconv.FormatUint(uint64(row.ID), 10),
			AdminID:   row.AdminID,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			CreatedAt: row.CreatedAt,
		}
		if row.Metadata != "" {
			if err := json.Unmarshal([]byte(row.Metadata), &rec.Metadata); err != nil {
				zap.L().Warn("unreadable audit metadata", zap.Uint("id", row.ID), zap.Error(err))
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordAudit writes an audit record and logs failures; auditing never fails the caller
func recordAudit(ctx context.Context, adminID *uint, action, entity string, entityID interface{}, metadata map[string]interface{}) {
	rec := AuditRecord{
		AdminID:  adminID,
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprint(entityID),
		Metadata: metadata,
	}
	if err := GetAuditService().Record(ctx, rec); err != nil {
		zap.L().Warn("failed to record audit entry",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Error(err),
		)
	}
}

// RecordAudit is recordAudit for callers outside the package
func RecordAudit(ctx context.Context, admin *models.Admin, action, entity string, entityID interface{}, metadata map[string]interface{}) {
	var adminID *uint
	if admin != nil {
		id := admin.ID
		adminID = &id
	}
	recordAudit(ctx, adminID, action, entity, entityID, metadata)
}
