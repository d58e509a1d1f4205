// Command sc is a CLI client for the storycircle community store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/bookmark"
	"github.com/avelichko/storycircle/internal/community"
	"github.com/avelichko/storycircle/internal/config"
	"github.com/avelichko/storycircle/internal/extract"
	"github.com/avelichko/storycircle/internal/identity"
	"github.com/avelichko/storycircle/internal/identity/local"
	"github.com/avelichko/storycircle/internal/migrate"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/profile"
	"github.com/avelichko/storycircle/internal/storage"
	filestore "github.com/avelichko/storycircle/internal/storage/file"
	pgstore "github.com/avelichko/storycircle/internal/storage/postgres"
	redisstore "github.com/avelichko/storycircle/internal/storage/redis"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles everything a subcommand needs.
type app struct {
	svc     *community.Service
	extract *extract.Client
	close   func()
}

// openStorage picks the blob backend from configuration.
func openStorage(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.Storage {
	case "file":
		st, err := filestore.New(cfg.DataDir)
		return st, func() {}, err
	case "redis":
		st, err := redisstore.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := pgstore.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// newApp loads config, opens storage, restores the session and wires the
// facade.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	blobs, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	provider := local.New(blobs, []byte(cfg.TokenKey), cfg.TokenTTL, logger)
	profiles := profile.New(blobs, logger)
	bookmarks := bookmark.New(blobs, logger)
	session := identity.NewAdapter(provider, profiles, bookmarks, logger)

	store := community.NewStore(blobs, logger)
	store.Load(ctx)
	provider.Restore(ctx)

	svc := community.NewService(provider, session, store, bookmarks, profiles, logger)
	ai := extract.NewClient(cfg.AIEndpoint, cfg.AIKey, cfg.AIModel, logger)

	return &app{
		svc:     svc,
		extract: ai,
		close: func() {
			closeStorage()
			_ = logger.Sync()
		},
	}, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `sc CLI
Usage:
  sc <cmd> [args]

Commands:
  version
  signup        -email <email> -p <password>
  login         -email <email> -p <password>
  logout
  whoami
  add-story     -title <t> [-category <c>] [-desc <d>] [-file <path> | -content <text>] [-tags a,b,c]
  stories
  story         -id <story-id>
  update-story  -id <story-id> [-status <s>] [-title <t>] [-summary <s>]
  comment       -id <story-id> -text <text>
  comments      -id <story-id>
  like          -id <story-id>
  bookmark      -id <story-id>
  bookmarks
  report        -id <story-id> -title <resource-title>
  rate          -id <story-id> -rating <1..5>
  ratings       [-id <story-id>]
  profile       -name <display-name> [-image <path>]
`)
	os.Exit(2)
}

// main dispatches subcommands against the community facade.
func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("sc %s (%s)\n", version, buildDate)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		fail(err)
	}
	defer a.close()

	switch cmd {

	case "signup", "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *email == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -email and -p")
			os.Exit(1)
		}
		if cmd == "signup" {
			err = a.svc.Signup(ctx, *email, *p)
		} else {
			err = a.svc.Login(ctx, *email, *p)
		}
		if err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		if err := a.svc.Logout(ctx); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "whoami":
		u, ok := a.svc.CurrentUser()
		if !ok {
			fmt.Fprintln(os.Stderr, "not signed in")
			os.Exit(1)
		}
		printJSON(u)

	case "add-story":
		cmdAddStory(ctx, a, args)

	case "stories":
		type row struct {
			ID, Title, Author string
			Status            model.StoryStatus
			Likes, Ratings    int
			Average           float64
		}
		likes := a.svc.Likes()
		rows := []row{}
		for _, st := range a.svc.Stories() {
			sum := a.svc.RatingSummary(st.ID)
			rows = append(rows, row{
				ID: st.ID, Title: st.Title, Author: st.AuthorName, Status: st.Status,
				Likes: len(likes[st.ID]), Ratings: sum.Count, Average: sum.Average,
			})
		}
		printJSON(rows)

	case "story":
		fs := flag.NewFlagSet("story", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		_ = fs.Parse(args)
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		st, ok := a.svc.StoryByID(*id)
		if !ok {
			fmt.Fprintln(os.Stderr, "story not found")
			os.Exit(1)
		}
		printJSON(struct {
			Story    model.Story
			Comments []model.Comment
			Rating   any
		}{st, a.svc.CommentsFor(*id), a.svc.RatingSummary(*id)})

	case "update-story":
		cmdUpdateStory(ctx, a, args)

	case "comment":
		fs := flag.NewFlagSet("comment", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		text := fs.String("text", "", "comment text")
		_ = fs.Parse(args)
		if *id == "" || *text == "" {
			fmt.Fprintln(os.Stderr, "need -id and -text")
			os.Exit(1)
		}
		a.svc.AddComment(ctx, *id, *text)

	case "comments":
		fs := flag.NewFlagSet("comments", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		_ = fs.Parse(args)
		printJSON(a.svc.CommentsFor(*id))

	case "like":
		fs := flag.NewFlagSet("like", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		_ = fs.Parse(args)
		a.svc.ToggleLike(ctx, *id)

	case "bookmark":
		fs := flag.NewFlagSet("bookmark", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		_ = fs.Parse(args)
		a.svc.ToggleBookmark(ctx, *id)

	case "bookmarks":
		printJSON(a.svc.Bookmarks())

	case "report":
		fs := flag.NewFlagSet("report", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		title := fs.String("title", "", "resource title")
		_ = fs.Parse(args)
		a.svc.ReportContent(ctx, *id, *title)

	case "rate":
		fs := flag.NewFlagSet("rate", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		r := fs.Int("rating", 0, "rating 1..5")
		_ = fs.Parse(args)
		a.svc.RateEmpathy(ctx, *id, *r)
		printJSON(a.svc.RatingSummary(*id))

	case "ratings":
		fs := flag.NewFlagSet("ratings", flag.ExitOnError)
		id := fs.String("id", "", "story id")
		_ = fs.Parse(args)
		if *id == "" {
			printJSON(a.svc.EmpathyRatings())
			return
		}
		printJSON(a.svc.RatingSummary(*id))

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		imagePath := fs.String("image", "", "avatar image file")
		_ = fs.Parse(args)
		if *name == "" {
			fmt.Fprintln(os.Stderr, "need -name")
			os.Exit(1)
		}
		var img []byte
		mime := ""
		if *imagePath != "" {
			img, err = os.ReadFile(*imagePath)
			if err != nil {
				fail(err)
			}
			mime = mimeFromName(*imagePath)
		}
		if err := a.svc.UpdateUserProfile(ctx, *name, img, mime); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		usage()
	}
}

// cmdAddStory builds story fields, running file extraction when -file is
// given, and appends the story.
func cmdAddStory(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("add-story", flag.ExitOnError)
	title := fs.String("title", "", "story title")
	category := fs.String("category", "", "category")
	desc := fs.String("desc", "", "short description")
	file := fs.String("file", "", "document/audio file to process")
	content := fs.String("content", "", "story text (skips extraction)")
	tags := fs.String("tags", "", "comma-separated tags")
	_ = fs.Parse(args)
	if *title == "" {
		fmt.Fprintln(os.Stderr, "need -title")
		os.Exit(1)
	}

	in := community.StoryInput{
		Title:            *title,
		Category:         *category,
		ShortDescription: *desc,
		Content:          *content,
		Tags:             splitTags(*tags),
	}

	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fail(err)
		}
		ex := a.extract.ProcessFile(ctx, filepath.Base(*file), mimeFromName(*file), data)
		in.Content = ex.Content
		in.Summary = ex.Summary
		in.FileName = filepath.Base(*file)
		if len(in.Tags) == 0 {
			in.Tags = ex.Tags
		}
	} else if *content != "" {
		in.Summary = a.extract.Summarize(ctx, *content)
	}

	st, err := a.svc.AddStory(ctx, in)
	if err != nil {
		fail(err)
	}
	printJSON(st)
}

func cmdUpdateStory(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("update-story", flag.ExitOnError)
	id := fs.String("id", "", "story id")
	status := fs.String("status", "", "new status")
	title := fs.String("title", "", "new title")
	summary := fs.String("summary", "", "new summary")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	var upd community.StoryUpdate
	if *status != "" {
		st := model.StoryStatus(*status)
		upd.Status = &st
	}
	if *title != "" {
		upd.Title = title
	}
	if *summary != "" {
		upd.Summary = summary
	}
	a.svc.UpdateStory(ctx, *id, upd)
}

// splitTags parses a comma-separated tag list, dropping empties.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// mimeFromName guesses a MIME type from the file extension.
func mimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
