// Package main seeds a persistent store with demo channels, videos, comments
// and relations so the API can be exercised locally.
//
// Usage:
//
//	STORAGE_DRIVER=sqlite go run ./cmd/seed -channels 5 -videos 12
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamhub/engagement-hub/config"
	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/bootstrap"
	"github.com/streamhub/engagement-hub/internal/infrastructure/persistence/redis"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channels := flag.Int("channels", 5, "number of channels to create")
	videos := flag.Int("videos", 10, "videos per channel")
	comments := flag.Int("comments", 3, "comments per video")
	flag.Parse()

	if err := run(ctx, *channels, *videos, *comments); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, nChannels, nVideos, nComments int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("the memory driver does not persist; use %q or %q", config.DriverSQLite, config.DriverPostgres)
	}

	log := logger.New(logger.DefaultOptions()).With(logger.Component("seed"))

	stores, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Seeding a store that a running API caches must not leave stale entries behind.
	writer := stores.Writer
	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(redis.ConfigFrom(cfg.Redis))
		if err != nil {
			log.Warn("redis unavailable, cached content is left to expire", logger.Err(err))
		} else {
			defer cache.Close()
			cached := redis.NewContentCache(stores.Contents, cache, cfg.Redis.ContentTTL, log)
			writer = redis.NewInvalidatingWriter(writer, cached, log)
		}
	}

	now := time.Now().UTC()
	channelIDs := make([]string, 0, nChannels)
	for i := 0; i < nChannels; i++ {
		id := shared.GenerateID().String()
		name := fmt.Sprintf("channel%02d", i)
		if err := writer.SaveChannel(ctx, &content.Channel{
			ID:        id,
			Username:  fmt.Sprintf("%s_%s", name, id[:6]),
			FullName:  fmt.Sprintf("Channel %d", i),
			AvatarRef: "avatars/" + id + ".png",
			CreatedAt: now.Add(-time.Duration(nChannels-i) * time.Hour),
		}); err != nil {
			return fmt.Errorf("save channel: %w", err)
		}
		channelIDs = append(channelIDs, id)
	}

	var videoCount, commentCount, relationCount int
	for ci, owner := range channelIDs {
		for v := 0; v < nVideos; v++ {
			videoID := shared.GenerateID().String()
			if err := writer.SaveVideo(ctx, &content.Video{
				ID:           videoID,
				OwnerID:      owner,
				Title:        fmt.Sprintf("Video %d by channel %d", v, ci),
				Description:  "Seeded demo video",
				VideoRef:     "videos/" + videoID + ".mp4",
				ThumbnailRef: "thumbs/" + videoID + ".jpg",
				Duration:     float64(30 + rand.Intn(600)),
				Views:        int64(rand.Intn(10000)),
				IsPublished:  v%5 != 4,
				CreatedAt:    now.Add(-time.Duration(v) * time.Minute),
			}); err != nil {
				return fmt.Errorf("save video: %w", err)
			}
			videoCount++

			for c := 0; c < nComments; c++ {
				author := channelIDs[rand.Intn(len(channelIDs))]
				if err := writer.SaveComment(ctx, &content.Comment{
					ID:        shared.GenerateID().String(),
					OwnerID:   author,
					VideoID:   videoID,
					Content:   fmt.Sprintf("Comment %d", c),
					CreatedAt: now.Add(-time.Duration(c) * time.Second),
				}); err != nil {
					return fmt.Errorf("save comment: %w", err)
				}
				commentCount++
			}

			for _, fan := range channelIDs {
				if rand.Intn(2) == 0 {
					continue
				}
				if _, err := stores.Relations.InsertIfAbsent(ctx, relation.Key{ActorID: fan, TargetID: videoID, Kind: relation.KindVideoLike}); err != nil {
					return fmt.Errorf("like video: %w", err)
				}
				relationCount++
			}
		}

		for _, fan := range channelIDs {
			if fan == owner || rand.Intn(2) == 0 {
				continue
			}
			if _, err := stores.Relations.InsertIfAbsent(ctx, relation.Key{ActorID: fan, TargetID: owner, Kind: relation.KindSubscription}); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			relationCount++
		}
	}

	log.Info("seed completed",
		logger.Int("channels", len(channelIDs)),
		logger.Int("videos", videoCount),
		logger.Int("comments", commentCount),
		logger.Int("relations", relationCount),
	)
	return nil
}
