package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"riptide/internal/models"
	"riptide/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset describes one seeding run. Presets live in YAML files so demo
// environments can be reproduced without editing code.
type Preset struct {
	Name     string `yaml:"name"`
	Users    int    `yaml:"users"`
	Posts    int    `yaml:"posts"`
	Votes    int    `yaml:"votes"`
	MaxDays  int    `yaml:"max_days"`
	Password string `yaml:"password"`
}

// DefaultPreset is used when no preset file is given.
var DefaultPreset = Preset{
	Name:     "default",
	Users:    10,
	Posts:    100,
	Votes:    400,
	MaxDays:  90,
	Password: "password123",
}

// LoadPreset reads a preset from a YAML file.
func LoadPreset(path string) (Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}

	preset := DefaultPreset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if preset.Users <= 0 || preset.Posts < 0 || preset.Votes < 0 {
		return Preset{}, fmt.Errorf("preset %q has non-positive counts", preset.Name)
	}
	return preset, nil
}

// Run seeds the database according to the preset. Votes go through the
// vote ledger so the denormalized points always match the vote rows.
func Run(db *gorm.DB, preset Preset) error {
	factory := NewFactory(db)
	voteRepo := repository.NewVoteRepository(db)
	ctx := context.Background()

	log.Printf("Seeding preset %q: %d users, %d posts, %d votes",
		preset.Name, preset.Users, preset.Posts, preset.Votes)

	users := make([]*models.User, 0, preset.Users)
	for i := 0; i < preset.Users; i++ {
		user, err := factory.CreateUser(preset.Password)
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	posts := make([]*models.Post, 0, preset.Posts)
	for i := 0; i < preset.Posts; i++ {
		posts = append(posts, factory.BuildPost(users[i%len(users)], preset.MaxDays))
	}
	if err := factory.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}

	err := factory.CastRandomVotes(users, posts, preset.Votes, func(postID, userID uint, value int) error {
		_, err := voteRepo.Cast(ctx, postID, userID, value)
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("Seeding complete")
	return nil
}
