package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand"

	"github.com/feedwire/feedwire/internal/client"
)

var users = []client.Credentials{
	{Name: "ada", Email: "ada@example.com", Password: "countess1"},
	{Name: "grace", Email: "grace@example.com", Password: "hopper42"},
	{Name: "edsger", Email: "edsger@example.com", Password: "goto-harmful"},
	{Name: "barbara", Email: "barbara@example.com", Password: "liskov-sub"},
}

var posts = []struct {
	title   string
	content string
}{
	{"Hello, feed!", "First post on the new feed. Everything works, ship it."},
	{"Weekend hike photos", "Went up the ridge trail on Saturday. The view from the top was worth every step."},
	{"My sourdough finally rose", "Attempt number seven. The trick was a warmer kitchen and a lot of patience."},
	{"City at night", "Long exposure from the bridge. The traffic turns into rivers of light."},
	{"New desk setup", "Finally cleaned up the cable mess. Productivity yet to be confirmed."},
	{"Garden update", "The tomatoes survived the storm. The basil did not make it."},
	{"Retro computing finds", "Picked up a working 486 at the flea market. It still boots to DOS."},
	{"Coffee experiments", "Tried a 1:17 ratio with a coarser grind. Noticeably less bitter."},
	{"Bookshelf tour", "Reorganized by color instead of author. Chaos, but photogenic chaos."},
	{"Rainy day sketching", "Stayed in and filled ten pages. Umbrellas are harder to draw than they look."},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Feedwire server URL")
	flag.Parse()

	log.Printf("Seeding feed at %s...", *baseURL)

	var clients []*client.Client
	for _, creds := range users {
		c := client.New(*baseURL)
		if err := c.SignupAndSignin(creds); err != nil {
			log.Fatalf("signup %s: %v", creds.Email, err)
		}
		log.Printf("✓ Signed up: %s", creds.Name)
		clients = append(clients, c)
	}

	for _, p := range posts {
		c := clients[rand.Intn(len(clients))]
		post, err := c.CreatePost(p.title, p.content, "seed.png", "image/png", seedImage())
		if err != nil {
			log.Printf("✗ Failed to post %q: %v", p.title, err)
			continue
		}
		log.Printf("✓ Posted #%d: %s", post.ID, p.title)
	}

	log.Println("Done.")
}

// seedImage renders a small random-color PNG so every seeded post has a
// real image behind its imageUrl.
func seedImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	c := color.RGBA{uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256)), 255}
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
