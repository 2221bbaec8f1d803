package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/mingle-social/mingle/internal/client"
)

var people = []struct {
	first string
	last  string
}{
	{"Ada", "Lovelace"},
	{"Grace", "Hopper"},
	{"Alan", "Turing"},
	{"Edsger", "Dijkstra"},
	{"Barbara", "Liskov"},
}

var posts = []struct {
	content string
	privacy string
}{
	{"Just joined Mingle, excited to be here!", ""},
	{"Hot take: tabs are better than spaces.", ""},
	{"Working on a side project this weekend. Wish me luck.", ""},
	{"Note to self: remember to back up the database.", "private"},
	{"Anyone else watching the eclipse tonight?", ""},
	{"My garden is finally blooming. Spring is here.", ""},
	{"Drafting my talk proposal, not ready to share yet.", "private"},
	{"Coffee count today: 4. Send help.", ""},
}

var comments = []string{
	"Love this!",
	"Couldn't agree more.",
	"Strong disagree, but respect the take.",
	"This made my day.",
	"Tell me more?",
	"Same here!",
	"Congrats!",
	"Bookmarking this one.",
}

var stories = []string{
	"Sunset from my balcony",
	"Best sandwich of my life",
	"Morning run done",
	"Office plant update",
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "Mingle server URL")
	flag.Parse()

	log.Printf("Seeding %s...\n", *baseURL)

	var clients []*client.Client
	for i, p := range people {
		c := client.New(*baseURL)
		email := fmt.Sprintf("%s.%s.%d@example.com", p.first, p.last, i)
		if _, err := c.Register(p.first, p.last, email, "password123"); err != nil {
			log.Fatalf("register %s %s: %v", p.first, p.last, err)
		}
		log.Printf("✓ Registered: %s %s", p.first, p.last)
		clients = append(clients, c)
	}

	var postIDs []string
	for _, p := range posts {
		c := clients[rand.Intn(len(clients))]
		post, err := c.CreatePost(p.content, "", p.privacy)
		if err != nil {
			log.Printf("✗ Failed to post: %v", err)
			continue
		}
		if p.privacy != "private" {
			postIDs = append(postIDs, post.ID)
		}
		log.Printf("✓ Posted: %s", p.content)

		// Small delay to spread out createdAt times
		time.Sleep(50 * time.Millisecond)
	}

	for _, postID := range postIDs {
		numComments := rand.Intn(3) + 1
		for i := 0; i < numComments; i++ {
			c := clients[rand.Intn(len(clients))]
			comment, err := c.CreateComment(postID, comments[rand.Intn(len(comments))], "")
			if err != nil {
				log.Printf("✗ Failed to comment: %v", err)
				continue
			}

			// Sometimes add a threaded reply
			if rand.Float32() < 0.3 {
				reply := clients[rand.Intn(len(clients))]
				if _, err := reply.CreateComment(postID, comments[rand.Intn(len(comments))], comment.ID); err != nil {
					log.Printf("✗ Failed to reply: %v", err)
				}
			}
		}
	}

	for _, c := range clients {
		for _, postID := range postIDs {
			if rand.Float32() < 0.5 {
				if _, err := c.LikePost(postID); err != nil {
					continue
				}
			}
		}
	}

	// A share or two for the feed
	if len(postIDs) > 0 {
		c := clients[rand.Intn(len(clients))]
		if _, err := c.SharePost(postIDs[0]); err != nil {
			log.Printf("✗ Failed to share: %v", err)
		} else {
			log.Printf("✓ Shared post %s", postIDs[0])
		}
	}

	for _, s := range stories {
		c := clients[rand.Intn(len(clients))]
		if _, err := c.CreateStory(s, "", ""); err != nil {
			log.Printf("✗ Failed to post story: %v", err)
			continue
		}
		log.Printf("✓ Story: %s", s)
	}

	log.Println("Done.")
}
