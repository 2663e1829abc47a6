//go:build ignore

// Seeds a running WhisperWall backend with sample whispers, likes and flags.
//
// Run with:
//
//	go run ./scripts/seed_whispers.go -url http://localhost:8000/api/v1 -n 45
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/wallapi"
)

var aliases = []string{
	"night_owl", "quiet_fox", "lantern", "paper_boat", "static",
	"", "", "", "Anonymous", "moss", "tide_pool", "ember",
}

var whispers = []string{
	"I still sleep with the hallway light on and I'm thirty-four.",
	"Sometimes I reply-all on purpose just to feel something.",
	"I've been learning the cello in secret for a year. Nobody knows.",
	"The office plant everyone compliments is plastic. I water it anyway.",
	"I miss the version of my city that existed before the highway.",
	"I told my team the build was flaky. It was me. It was always me.",
	"Every time it rains I call my grandmother. She doesn't know that's why.",
	"I pretend to understand wine at dinner parties.",
	"I finally finished the novel I started in 2015. It's terrible and I love it.",
	"Quitting was the best decision I never told anyone about.",
	"I keep a list of strangers who were kind to me.",
	"My dog is the only one who has heard me sing.",
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000/api/v1", "service base URL")
	n := flag.Int("n", 45, "number of whispers to create")
	flag.Parse()

	client, err := wallapi.NewClient(*baseURL)
	if err != nil {
		log.Fatal("Invalid base URL:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var created []posts.Post

	for i := 0; i < *n; i++ {
		content := whispers[rng.Intn(len(whispers))]
		alias := aliases[rng.Intn(len(aliases))]

		p, err := client.CreatePost(ctx, content, alias)
		if err != nil {
			log.Fatalf("Failed to create whisper %d: %v", i+1, err)
		}
		created = append(created, *p)
		log.Printf("Created whisper %s by %s: %.40s...", p.ID, p.Alias(), p.Content)
	}

	likes, flags := 0, 0
	for _, p := range created {
		for j := rng.Intn(6); j > 0; j-- {
			if _, err := client.LikePost(ctx, p.ID); err != nil {
				log.Printf("Failed to like %s: %v", p.ID, err)
				continue
			}
			likes++
		}
		if rng.Intn(10) == 0 {
			if _, err := client.FlagPost(ctx, p.ID); err != nil {
				log.Printf("Failed to flag %s: %v", p.ID, err)
				continue
			}
			flags++
		}
	}

	log.Printf("Seeded %d whispers, %d likes, %d flags", len(created), likes, flags)
}
