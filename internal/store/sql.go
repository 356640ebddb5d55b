package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/finance-tracker/backend/internal/database"
	"github.com/finance-tracker/backend/internal/uuid"
	"gorm.io/gorm"
)

// SQL stores documents in the documents table of a gorm database.
type SQL struct {
	db     *gorm.DB
	broker *Broker
}

// NewSQL returns a store backed by db. Changes are published to broker.
func NewSQL(db *gorm.DB, broker *Broker) *SQL {
	return &SQL{db: db, broker: broker}
}

func (s *SQL) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := documentPath(path); err != nil {
		return Document{}, err
	}

	row, err := s.find(s.db.WithContext(ctx), path)
	if err != nil {
		return Document{}, err
	}

	return fromRow(row)
}

func (s *SQL) Set(ctx context.Context, path string, data map[string]any, opts SetOptions) error {
	parent, _, err := documentPath(path)
	if err != nil {
		return err
	}

	var written map[string]any
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.find(tx, path)
		if errors.Is(err, ErrNotFound) {
			written = data
			return s.create(tx, path, parent, data)
		}

		if err != nil {
			return err
		}

		written = data
		if opts.Merge {
			doc, err := fromRow(existing)
			if err != nil {
				return err
			}
			written = merge(doc.Data, data)
		}

		return s.save(tx, path, written)
	})
	if err != nil {
		return err
	}

	s.broker.Publish(Change{Operation: OperationSet, Path: path, Data: written})
	return nil
}

func (s *SQL) Update(ctx context.Context, path string, fields map[string]any) error {
	if _, _, err := documentPath(path); err != nil {
		return err
	}

	var written map[string]any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.find(tx, path)
		if err != nil {
			return err
		}

		doc, err := fromRow(existing)
		if err != nil {
			return err
		}

		written = merge(doc.Data, fields)
		return s.save(tx, path, written)
	})
	if err != nil {
		return err
	}

	s.broker.Publish(Change{Operation: OperationUpdate, Path: path, Data: written})
	return nil
}

func (s *SQL) Delete(ctx context.Context, path string) error {
	if _, _, err := documentPath(path); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("path = ?", path).Delete(&database.Document{})
	if result.Error != nil {
		return fmt.Errorf("deleting %s: %w", path, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	s.broker.Publish(Change{Operation: OperationDelete, Path: path})
	return nil
}

func (s *SQL) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := collectionPath(collection); err != nil {
		return "", err
	}

	id := uuid.NewString()
	path := RecordPath(collection, id)

	err := s.create(s.db.WithContext(ctx), path, collection, data)
	if err != nil {
		return "", err
	}

	s.broker.Publish(Change{Operation: OperationAdd, Path: path, Data: data})
	return id, nil
}

func (s *SQL) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := collectionPath(collection); err != nil {
		return nil, err
	}

	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("parent = ?", collection)
	for _, f := range filters {
		q = q.Where("json_extract(data, ?) = ?", "$."+f.Field, f.Value)
	}

	var rows []database.Document
	err := q.Order("created_at ASC").Order("rowid ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *SQL) Subscribe(ctx context.Context, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error) {
	return subscribe(ctx, s.broker, s, path, onChange, onError)
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *SQL) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *SQL) find(tx *gorm.DB, path string) (database.Document, error) {
	var row database.Document
	err := tx.First(&row, "path = ?", path).Error
	if errors.Is(err, database.ErrResourceNotFound) {
		return database.Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if err != nil {
		return database.Document{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return row, nil
}

func (s *SQL) create(tx *gorm.DB, path, parent string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	err = tx.Create(&database.Document{Path: path, Parent: parent, Data: string(encoded)}).Error
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	return nil
}

func (s *SQL) save(tx *gorm.DB, path string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	err = tx.Model(&database.Document{}).Where("path = ?", path).Update("data", string(encoded)).Error
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	return nil
}

func fromRow(row database.Document) (Document, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return Document{}, fmt.Errorf("decoding %s: %w", row.Path, err)
	}

	_, id, _ := documentPath(row.Path)
	return Document{
		ID:        id,
		Path:      row.Path,
		Data:      data,
		CreatedAt: row.CreatedAt,
	}, nil
}
