package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/models"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedEmailDomain marks seeded accounts so Clean can find them
const SeedEmailDomain = "@seed.example.com"

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

// Options controls how much data SeedDev creates
type Options struct {
	Users        int
	PostsPerUser int
	Comments     int
	Follows      int
	// Seed makes the generated data reproducible when non-zero
	Seed int64
}

// DevOptions returns a realistic development data set
func DevOptions() Options {
	return Options{
		Users:        50,
		PostsPerUser: 5,
		Comments:     300,
		Follows:      200,
	}
}

// Result counts what a seeding run created
type Result struct {
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	hasher   *auth.PasswordHasher
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	rng      *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, hasher *auth.PasswordHasher) *Seeder {
	return &Seeder{
		db:       db,
		hasher:   hasher,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
	}
}

// SeedDev seeds the database with fake users, posts, comments and follows
func (s *Seeder) SeedDev(ctx context.Context, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(seed)
	s.rng = rand.New(rand.NewSource(seed))

	result := &Result{}

	logger.Log.Info("Creating users...", zap.Int("count", opts.Users))
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	result.Users = len(users)
	if len(users) == 0 {
		return result, nil
	}

	logger.Log.Info("Creating posts...", zap.Int("per_user", opts.PostsPerUser))
	posts, err := s.seedPosts(ctx, users, opts.PostsPerUser)
	if err != nil {
		return nil, fmt.Errorf("failed to seed posts: %w", err)
	}
	result.Posts = len(posts)

	logger.Log.Info("Creating comments...", zap.Int("count", opts.Comments))
	if result.Comments, err = s.seedComments(ctx, users, posts, opts.Comments); err != nil {
		return nil, fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Creating follows...", zap.Int("count", opts.Follows))
	if result.Follows, err = s.seedFollows(ctx, users, opts.Follows); err != nil {
		return nil, fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", result.Users),
		zap.Int("posts", result.Posts),
		zap.Int("comments", result.Comments),
		zap.Int("follows", result.Follows),
	)
	return result, nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]*models.User, error) {
	// One hash for every account keeps seeding fast
	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for len(users) < count {
		username := models.SanitizeUsername(strings.ToLower(gofakeit.Username()))
		if username == "" {
			continue
		}

		user := &models.User{
			Email:        username + SeedEmailDomain,
			Username:     username,
			FullName:     gofakeit.Name(),
			Bio:          gofakeit.HipsterSentence(),
			PasswordHash: hash,
		}

		err := s.users.CreateUser(ctx, user)
		if errors.Is(err, repository.ErrDuplicate) {
			// Username collision; draw another
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, perUser int) ([]*models.Post, error) {
	now := time.Now().UTC()
	posts := make([]*models.Post, 0, len(users)*perUser)

	for _, user := range users {
		for i := 0; i < perUser; i++ {
			post := &models.Post{
				AuthorID:  user.ID,
				Content:   gofakeit.HipsterSentence(),
				LikeCount: s.rng.Intn(50),
				CreatedAt: gofakeit.DateRange(now.AddDate(0, -3, 0), now).UTC(),
			}
			if err := s.posts.CreatePost(ctx, post); err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post, count int) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		post := posts[s.rng.Intn(len(posts))]
		author := users[s.rng.Intn(len(users))]

		comment := &models.Comment{
			PostID:    post.ID,
			UserID:    &author.ID,
			Content:   gofakeit.HipsterSentence(),
			CreatedAt: gofakeit.DateRange(post.CreatedAt, now).UTC(),
		}
		if err := s.comments.CreateComment(ctx, comment); err != nil {
			return i, err
		}
	}
	return count, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []*models.User, count int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	// Never ask for more edges than exist
	if maxEdges := len(users) * (len(users) - 1); count > maxEdges {
		count = maxEdges
	}

	created := 0
	for attempts := 0; created < count && attempts < count*10; attempts++ {
		follower := users[s.rng.Intn(len(users))]
		following := users[s.rng.Intn(len(users))]
		if follower.ID == following.ID {
			continue
		}

		err := s.follows.CreateFollow(ctx, follower.ID, following.ID)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Clean removes every seeded account with its posts, comments and follows
func (s *Seeder) Clean(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seeded := tx.Model(&models.User{}).Select("id").Where("email LIKE ?", "%"+SeedEmailDomain)
		seededPosts := tx.Model(&models.Post{}).Select("id").Where("author_id IN (?)", seeded)

		steps := []struct {
			name  string
			query *gorm.DB
			model interface{}
		}{
			{"comments", tx.Where("user_id IN (?) OR post_id IN (?)", seeded, seededPosts), &models.Comment{}},
			{"follows", tx.Where("follower_id IN (?) OR following_id IN (?)", seeded, seeded), &models.Follow{}},
			{"posts", tx.Where("author_id IN (?)", seeded), &models.Post{}},
			{"users", tx.Where("email LIKE ?", "%"+SeedEmailDomain), &models.User{}},
		}

		for _, step := range steps {
			result := step.query.Delete(step.model)
			if result.Error != nil {
				return fmt.Errorf("failed to delete seeded %s: %w", step.name, result.Error)
			}
			logger.Log.Info("Removed seeded rows", zap.String("table", step.name), zap.Int64("rows", result.RowsAffected))
		}
		return nil
	})
}
