package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"snappoint/pkg/config"
	"snappoint/pkg/database"
	"snappoint/pkg/jwt"
	"snappoint/pkg/logger"
	"snappoint/pkg/models"
	"snappoint/pkg/s3"

	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	nickname string
}

var seedUsers = []seedUser{
	{"alice@snappoint.dev", "alice"},
	{"bob@snappoint.dev", "bob"},
	{"charlie@snappoint.dev", "charlie"},
}

// uploader is the part of the S3 client the seed needs.
type uploader interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

func main() {
	var filesPerUser int
	flag.IntVar(&filesPerUser, "files", 3, "unattached media files to upload per user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	db, err := database.Open(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s3Client.EnsureBucket(ctx); err != nil {
		log.Error("Failed to prepare bucket: %v", err)
		panic(err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetch := func(ctx context.Context, index int) ([]byte, error) {
		return fetchSampleImage(ctx, httpClient, index)
	}

	s := &seeder{db: db, store: s3Client, fetch: fetch, log: log}
	users, err := s.run(ctx, filesPerUser)
	if err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	tokens := jwt.NewService(cfg.JWTSecret)
	for _, u := range users {
		token, err := tokens.GenerateToken(u.ID, u.Email)
		if err != nil {
			log.Error("Failed to issue token for %s: %v", u.Email, err)
			continue
		}
		fmt.Printf("%s\t%s\tBearer %s\n", u.Email, u.ID, token)
	}

	log.Info("Database seeded successfully!")
}

type seeder struct {
	db    *gorm.DB
	store uploader
	fetch func(ctx context.Context, index int) ([]byte, error)
	log   *logger.Logger
}

// run creates the seed users (reusing existing ones by email) and uploads
// filesPerUser unattached images for each of them.
func (s *seeder) run(ctx context.Context, filesPerUser int) ([]models.User, error) {
	users := make([]models.User, 0, len(seedUsers))
	for _, data := range seedUsers {
		user, err := s.ensureUser(ctx, data)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)

		for i := 0; i < filesPerUser; i++ {
			if err := s.uploadFile(ctx, user.ID, i); err != nil {
				s.log.Error("Failed to upload file %d for %s: %v", i+1, user.Nickname, err)
				continue
			}
		}
	}
	return users, nil
}

func (s *seeder) ensureUser(ctx context.Context, data seedUser) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", data.email).First(&existing).Error
	if err == nil {
		s.log.Info("User %s already exists, skipping", data.email)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user %s: %w", data.email, err)
	}

	user := &models.User{Email: data.email, Nickname: data.nickname}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", data.email, err)
	}
	s.log.Info("Created user: %s (%s)", user.Nickname, user.Email)
	return user, nil
}

func (s *seeder) uploadFile(ctx context.Context, userID string, index int) error {
	data, err := s.fetch(ctx, index)
	if err != nil {
		return err
	}

	file := &models.File{UserID: userID, MimeType: "image/jpeg", IsProcessed: true}
	if err := file.BeforeCreate(nil); err != nil {
		return fmt.Errorf("generate file ID: %w", err)
	}

	key := fmt.Sprintf("files/%s/%s.jpg", userID, file.ID)
	url, err := s.store.PutObject(ctx, key, data, file.MimeType)
	if err != nil {
		return err
	}
	file.URL = url

	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("create file row: %w", err)
	}
	s.log.Info("Uploaded unattached file %s -> %s", file.ID, url)
	return nil
}

func fetchSampleImage(ctx context.Context, client *http.Client, index int) ([]byte, error) {
	url := fmt.Sprintf("https://picsum.photos/seed/snappoint-%d/800/600", index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sample image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sample image source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sample image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("received empty image data")
	}
	return data, nil
}
