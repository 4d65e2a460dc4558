package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"POSTS_BACK-END/internal/models"
)

const postColumns = `id, title, content, published, owner_id, created_at`

// PostRepository persists posts. Every mutation runs in its own transaction.
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository instance
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns posts in id order. An empty filter returns every post.
func (r *PostRepository) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+`
           FROM posts
          WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
          ORDER BY id
          LIMIT $2 OFFSET $3`,
		likeEscaper.Replace(f.Search), limit, f.Offset)
	if err != nil {
		return nil, classify("list posts", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, classify("list posts", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list posts", err)
	}
	return posts, nil
}

// GetByID returns ErrNotFound when no post has the given id.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get post", err)
	}
	return post, nil
}

// Create inserts a post owned by ownerID.
func (r *PostRepository) Create(ctx context.Context, ownerID int64, in models.PostInput) (*models.Post, error) {
	var post *models.Post
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		post, err = scanPost(tx.QueryRow(ctx,
			`INSERT INTO posts (title, content, published, owner_id) VALUES ($1, $2, $3, $4) RETURNING `+postColumns,
			in.Title, in.Content, in.Published, ownerID))
		return err
	})
	if err != nil {
		return nil, classify("create post", err)
	}
	return post, nil
}

// lockOwned locks the post row for the rest of tx and checks that actorID
// owns it.
func lockOwned(ctx context.Context, tx pgx.Tx, id, actorID int64) error {
	var ownerID int64
	if err := tx.QueryRow(ctx, `SELECT owner_id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&ownerID); err != nil {
		return err
	}
	if ownerID != actorID {
		return ErrNotOwner
	}
	return nil
}

// Update replaces title, content and published of a post owned by actorID.
// It returns ErrNotFound or ErrNotOwner without writing anything.
func (r *PostRepository) Update(ctx context.Context, id, actorID int64, in models.PostInput) (*models.Post, error) {
	var post *models.Post
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, id, actorID); err != nil {
			return err
		}
		var err error
		post, err = scanPost(tx.QueryRow(ctx,
			`UPDATE posts SET title = $1, content = $2, published = $3 WHERE id = $4 RETURNING `+postColumns,
			in.Title, in.Content, in.Published, id))
		return err
	})
	if err != nil {
		return nil, classify("update post", err)
	}
	return post, nil
}

// Delete removes a post owned by actorID.
func (r *PostRepository) Delete(ctx context.Context, id, actorID int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, id, actorID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		return err
	})
	return classify("delete post", err)
}
