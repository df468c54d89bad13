package seed

import (
	"fmt"
	"log"

	"github.com/shreyea/write/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with test data: users, posts with likes and
// comments, a friend mesh in all three request states, and follow edges.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d test users created", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		posts = append(posts, f.BuildPost(author))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := seedFriendMesh(f, users); err != nil {
		return fmt.Errorf("failed to create friend mesh: %w", err)
	}
	log.Println("✓ friend mesh created")

	if err := seedEngagement(f, users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}
	log.Println("✓ likes and comments created")

	log.Println("🌳 Seeding complete")
	return nil
}

// seedFriendMesh links each user to a handful of others, spread across the
// three request states so every screen has data.
func seedFriendMesh(f *Factory, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	statuses := []models.FriendRequestStatus{
		models.FriendRequestAccepted,
		models.FriendRequestAccepted,
		models.FriendRequestPending,
		models.FriendRequestRejected,
	}

	for i, user := range users {
		links := f.rng.Intn(4) + 1
		for j := 1; j <= links; j++ {
			other := users[(i+j)%len(users)]
			if other.ID == user.ID {
				continue
			}
			status := statuses[f.rng.Intn(len(statuses))]
			if _, err := f.CreateFriendRequest(user, other, status); err != nil {
				return err
			}
			// Follows loosely track friendships plus some one-way edges
			if f.rng.Intn(2) == 0 {
				if err := f.CreateFollow(user, other); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func seedEngagement(f *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		likes := f.rng.Intn(len(users))
		for i := 0; i < likes; i++ {
			if err := f.CreateLike(users[i], post); err != nil {
				return err
			}
		}
		comments := f.rng.Intn(4)
		for i := 0; i < comments; i++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return err
			}
		}
	}
	return nil
}

// clearData removes all seeded rows. Order matters for foreign keys.
func clearData(db *gorm.DB) error {
	tables := []string{"likes", "comments", "posts", "friend_requests", "follows", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
