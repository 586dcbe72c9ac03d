package services

import (
	"context"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

func TestTrendingNotifiesTopThreeOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author", models.VisibilityPublic)
	other := f.user(t, "other", models.VisibilityPublic)

	testutil.CreateBlog(t, f.store, author.ID, "first", 400)
	testutil.CreateBlog(t, f.store, author.ID, "second", 300)
	testutil.CreateBlog(t, f.store, other.ID, "third", 200)
	testutil.CreateBlog(t, f.store, other.ID, "fourth", 100)

	for i := 0; i < 3; i++ {
		blogs, err := f.blogs.Trending(ctx, Anonymous, TrendingAll, "")
		if err != nil {
			t.Fatalf("Trending %d: %v", i+1, err)
		}
		if len(blogs) != 4 || blogs[0].Title != "first" {
			t.Fatalf("Trending %d returned %d blogs, first %q", i+1, len(blogs), blogs[0].Title)
		}
	}

	if got := f.notifications(t, author.ID, models.NotificationTrending); len(got) != 2 {
		t.Fatalf("author has %d trending notifications, want 2", len(got))
	}
	trending := f.notifications(t, other.ID, models.NotificationTrending)
	if len(trending) != 1 {
		t.Fatalf("other has %d trending notifications, want 1", len(trending))
	}
	if trending[0].SenderID != nil {
		t.Fatalf("trending notification has a sender")
	}
}

func TestTrendingHidesPrivateAuthors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	public := f.user(t, "public", models.VisibilityPublic)
	private := f.user(t, "private", models.VisibilityPrivate)
	testutil.CreateBlog(t, f.store, public.ID, "open", 10)
	testutil.CreateBlog(t, f.store, private.ID, "closed", 20)

	blogs, err := f.blogs.Trending(ctx, Anonymous, TrendingAll, "")
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(blogs) != 1 || blogs[0].Title != "open" {
		t.Fatalf("Trending = %+v, want only the public blog", blogs)
	}
	// Detection runs on the unfiltered ranking.
	if got := f.notifications(t, private.ID, models.NotificationTrending); len(got) != 1 {
		t.Fatalf("private author has %d trending notifications, want 1", len(got))
	}
}

func TestIncrementView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author", models.VisibilityPublic)
	reader := f.user(t, "reader", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, author.ID, "post", 0)

	steps := []struct {
		name   string
		viewer uint
		ip     string
		want   ViewResult
	}{
		{"author", author.ID, "10.0.0.1", ViewResult{Status: ViewSkipped, Views: 0}},
		{"reader", reader.ID, "10.0.0.2", ViewResult{Status: ViewIncremented, Views: 1}},
		{"reader again", reader.ID, "10.0.0.3", ViewResult{Status: ViewAlreadyViewed, Views: 1}},
		{"anonymous", Anonymous, "10.0.0.4", ViewResult{Status: ViewIncremented, Views: 2}},
		{"anonymous again", Anonymous, "10.0.0.4", ViewResult{Status: ViewAlreadyViewed, Views: 2}},
	}
	for _, s := range steps {
		got, err := f.blogs.IncrementView(ctx, s.viewer, s.ip, blog.ID)
		if err != nil {
			t.Fatalf("%s: IncrementView: %v", s.name, err)
		}
		if got != s.want {
			t.Fatalf("%s: IncrementView = %+v, want %+v", s.name, got, s.want)
		}
	}
}

func TestCreateBlogSlugs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author", models.VisibilityPublic)

	req := models.BlogRequest{Title: "Hello World", Content: "body", Tags: []string{"Go", "go"}}
	first, err := f.blogs.Create(ctx, author.ID, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := f.blogs.Create(ctx, author.ID, req)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.Slug != "hello-world" {
		t.Fatalf("slug = %q, want hello-world", first.Slug)
	}
	if second.Slug == first.Slug {
		t.Fatalf("duplicate slug %q", second.Slug)
	}
}
