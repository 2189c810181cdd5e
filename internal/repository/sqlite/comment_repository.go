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

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
`

const selectComment = `
SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
	u.id, u.username, u.email, u.created_at, u.updated_at
FROM comments c
JOIN users u ON u.id = c.user_id`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (post_id, user_id, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx, selectComment+` WHERE c.id = ?`, id))
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectComment+`
WHERE c.post_id = ?
ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.Author.ID,
		&comment.Author.Username,
		&comment.Author.Email,
		&comment.Author.CreatedAt,
		&comment.Author.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
