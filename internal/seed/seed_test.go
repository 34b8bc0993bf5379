package seed

import (
	"os"
	"path/filepath"
	"testing"

	"riptide/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Vote{}))
	return db
}

func TestLoadPreset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"name: demo\nusers: 3\nposts: 12\nvotes: 30\nmax_days: 7\n"), 0o644))

	preset, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", preset.Name)
	assert.Equal(t, 3, preset.Users)
	assert.Equal(t, 12, preset.Posts)
	assert.Equal(t, 30, preset.Votes)
	assert.Equal(t, 7, preset.MaxDays)
	assert.Equal(t, DefaultPreset.Password, preset.Password, "omitted fields keep defaults")
}

func TestLoadPreset_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("users: 0\n"), 0o644))

	_, err := LoadPreset(path)
	assert.Error(t, err)

	_, err = LoadPreset(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestRun_PointsMatchLedger(t *testing.T) {
	t.Parallel()

	db := setupSeedDB(t)
	preset := Preset{
		Name:     "test",
		Users:    4,
		Posts:    10,
		Votes:    40,
		MaxDays:  30,
		Password: "pw-test",
	}
	require.NoError(t, Run(db, preset))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.Equal(t, int64(4), userCount)
	assert.Equal(t, int64(10), postCount)

	// Every post's points must equal the sum of its vote rows.
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, post := range posts {
		var sum int64
		require.NoError(t, db.Model(&models.Vote{}).
			Where("post_id = ?", post.ID).
			Select("COALESCE(SUM(value), 0)").
			Scan(&sum).Error)
		assert.Equal(t, int(sum), post.Points, "post %d points drifted from its ledger", post.ID)
	}
}

func TestFactory_CreateUserHashesPassword(t *testing.T) {
	t.Parallel()

	db := setupSeedDB(t)
	factory := NewFactory(db)

	user, err := factory.CreateUser("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")))
}
