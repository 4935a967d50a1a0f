package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"recipe-sync/internal/app"
	"recipe-sync/internal/config"
	"recipe-sync/internal/pkg/jwt"
	"recipe-sync/internal/usecase/scrape"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const usage = `usage:
  scrape submit -url <url> -user <uuid> [-platform youtube|instagram|tiktok]
  scrape resolve -job <uuid> [-wait 2m] [-every 5s]
  scrape relaunch -job <uuid>
  scrape list -user <uuid>
  scrape token -user <uuid> [-email addr]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env status=skip reason=%v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "submit":
		err = runSubmit(ctx, c.Scrape, os.Args[2:])
	case "resolve":
		err = runResolve(ctx, c.Scrape, os.Args[2:])
	case "relaunch":
		err = runRelaunch(ctx, c.Scrape, os.Args[2:])
	case "list":
		err = runList(ctx, c.Scrape, os.Args[2:])
	case "token":
		err = runToken(c.JWT, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func runSubmit(ctx context.Context, uc scrape.Usecase, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	url := fs.String("url", "", "recipe url")
	user := fs.String("user", "", "owner user id")
	p := fs.String("platform", "", "platform override")
	_ = fs.Parse(args)

	id, err := uc.Submit(ctx, scrape.SubmitInput{URL: *url, Platform: *p, UserID: *user})
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// runResolve polls until the job reaches a terminal status or wait elapses.
func runResolve(ctx context.Context, uc scrape.Usecase, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	id := fs.String("job", "", "job id")
	wait := fs.Duration("wait", 0, "keep polling for up to this long")
	every := fs.Duration("every", 5*time.Second, "poll interval")
	_ = fs.Parse(args)

	deadline := time.Now().Add(*wait)
	for {
		status, err := uc.Resolve(ctx, *id, "")
		if err != nil {
			return err
		}
		fmt.Println(status)
		if status.Terminal() || !time.Now().Before(deadline) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(*every):
		}
	}
}

func runRelaunch(ctx context.Context, uc scrape.Usecase, args []string) error {
	fs := flag.NewFlagSet("relaunch", flag.ExitOnError)
	id := fs.String("job", "", "job id")
	_ = fs.Parse(args)

	status, err := uc.Relaunch(ctx, *id, "")
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

// runToken mints an access token for local testing against a server that
// has JWT_SECRET set.
func runToken(svc jwt.Service, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "user id (token subject)")
	email := fs.String("email", "", "email claim")
	_ = fs.Parse(args)

	if svc == nil {
		return errors.New("JWT_SECRET is not configured")
	}
	id, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid -user: %w", err)
	}
	token, err := svc.GenerateAccessToken(id, *email)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runList(ctx context.Context, uc scrape.Usecase, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	user := fs.String("user", "", "owner user id")
	_ = fs.Parse(args)

	jobs, err := uc.ListJobs(ctx, *user)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		fmt.Printf("%s\t%s\t%s\t%s\n", j.ID, j.Status, j.Platform, j.URL)
	}
	return nil
}
