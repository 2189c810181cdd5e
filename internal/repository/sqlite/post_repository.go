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

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	topic_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(topic_id) REFERENCES topics(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_posts_topic_id ON posts(topic_id);
`

const selectPost = `
SELECT p.id, p.title, p.content, p.topic_id, p.user_id, p.created_at, p.updated_at,
	t.id, t.title, t.description, t.created_at, t.updated_at,
	u.id, u.username, u.email, u.created_at, u.updated_at
FROM posts p
JOIN topics t ON t.id = p.topic_id
JOIN users u ON u.id = p.user_id`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (title, content, topic_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		post.Title,
		post.Content,
		post.TopicID,
		post.UserID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = ?`, id))
}

func (r *PostRepository) ListFeed(ctx context.Context, userID int64, order domain.SortOrder) ([]domain.Post, error) {
	direction := "DESC"
	if order == domain.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`%s
WHERE p.topic_id IN (SELECT topic_id FROM subscriptions WHERE user_id = ?)
ORDER BY p.created_at %s, p.id %s`, selectPost, direction, direction)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) ListByTopic(ctx context.Context, topicID int64) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPost+`
WHERE p.topic_id = ?
ORDER BY p.created_at DESC, p.id DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("query posts by topic: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.TopicID,
		&post.UserID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Topic.ID,
		&post.Topic.Title,
		&post.Topic.Description,
		&post.Topic.CreatedAt,
		&post.Topic.UpdatedAt,
		&post.Author.ID,
		&post.Author.Username,
		&post.Author.Email,
		&post.Author.CreatedAt,
		&post.Author.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
