package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mdd-forum/internal/domain"
	"mdd-forum/internal/repository"
)

const createTopicsTables = `
CREATE TABLE IF NOT EXISTS topics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS subscriptions (
	user_id INTEGER NOT NULL,
	topic_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, topic_id),
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(topic_id) REFERENCES topics(id) ON DELETE CASCADE
);
`

type TopicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) repository.TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTopicsTables); err != nil {
		return fmt.Errorf("create topics tables: %w", err)
	}
	return nil
}

// EnsureSeeded inserts the given topics, skipping titles that already exist.
func (r *TopicRepository) EnsureSeeded(ctx context.Context, topics []domain.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, topic := range topics {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO topics (title, description, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(title) DO NOTHING`,
			topic.Title,
			topic.Description,
			now,
			now,
		); err != nil {
			return fmt.Errorf("seed topic %q: %w", topic.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit topic seed: %w", err)
	}
	return nil
}

func (r *TopicRepository) List(ctx context.Context) ([]domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, created_at, updated_at
FROM topics
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()
	return collectTopics(rows)
}

func (r *TopicRepository) Get(ctx context.Context, id int64) (*domain.Topic, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, created_at, updated_at
FROM topics
WHERE id = ?`, id)

	var topic domain.Topic
	if err := row.Scan(&topic.ID, &topic.Title, &topic.Description, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan topic: %w", err)
	}
	return &topic, nil
}

func (r *TopicRepository) IsSubscribed(ctx context.Context, userID, topicID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM subscriptions WHERE user_id = ? AND topic_id = ?`,
		userID, topicID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query subscription: %w", err)
	}
	return n > 0, nil
}

func (r *TopicRepository) AddSubscription(ctx context.Context, userID, topicID int64) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO subscriptions (user_id, topic_id, created_at)
VALUES (?, ?, ?)`,
		userID, topicID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subscription %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *TopicRepository) RemoveSubscription(ctx context.Context, userID, topicID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM subscriptions WHERE user_id = ? AND topic_id = ?`,
		userID, topicID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("subscription delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("subscription %w", repository.ErrNotFound)
	}
	return nil
}

func (r *TopicRepository) ListSubscriptions(ctx context.Context, userID int64) ([]domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT t.id, t.title, t.description, t.created_at, t.updated_at
FROM topics t
JOIN subscriptions s ON s.topic_id = t.id
WHERE s.user_id = ?
ORDER BY t.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()
	return collectTopics(rows)
}

func collectTopics(rows *sql.Rows) ([]domain.Topic, error) {
	topics := []domain.Topic{}
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.Description, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
